/*
Package shell implements the storefront's page shell on top of a parsed HTML
document, for the router to render into without a browser.

A Document expects a mount element with the id "app"; a loading indicator
with the id "loading", navigation links with the class "nav-link", a mobile
navigation menu with the class "nav-menu" and footer chrome are picked up
when present. Each time the router replaces the mount contents, the new
fragment goes into a freshly created container element. Listeners bound to
elements inside the mount belong to that container, so they vanish together
with it on the next navigation.

Events get delivered using Document.Dispatch, which makes a Document usable in
tests as well as for rendering storefront pages from the command line.
*/
package shell
