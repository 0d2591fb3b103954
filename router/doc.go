/*
Package router implements the storefront's hash router: it maps the URL
fragment of the page shell onto a route, retrieves the route's HTML fragment
and swaps it into the shell's mount element, simulating multi-page
navigation inside a single document.

A Router never reaches out for ambient global state; instead, it works on the
Shell it has been created with. Package shell provides a Shell implementation
operating on a parsed HTML document.

Fragments are either embedded into the route table or retrieved using a
Fetcher. How file-based fragments are located is a matter of the Strategy:

  - Relative resolves fragment files relative to the page shell's own
    location, trying a fixed list of alternative paths when the first
    attempt fails.
  - Server retrieves fragment files from a known content server origin and
    tells the user to start the content server when it cannot be reached.

Each navigation is tagged with a sequence number, so that a slow retrieval
finishing after a newer navigation has already rendered gets discarded
instead of overwriting the newer content.
*/
package router
