/*
Package contentserver serves the storefront's static files (the page shell,
its scripts and stylesheets, and the HTML fragments under "pages/") during
development.

The Handler type implements http.Handler on top of any fs.FS. Request paths
map one-to-one onto file names inside that fs.FS, with the root path mapping
onto the root document. Missing ".html" files are answered with the root
document instead, following the usual SPA convention, while every other miss
is a plain 404. All responses carry permissive CORS headers, so that page
shells loaded from other origins (or from the local file system) still can
fetch fragments from this server.

	h := contentserver.New(os.DirFS("site"), contentserver.WithLogger(log))
	_ = http.ListenAndServe(":3000", h)
*/
package contentserver
