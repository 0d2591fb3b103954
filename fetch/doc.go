/*
Package fetch retrieves HTML fragments over HTTP on behalf of the router.

NewXHR returns a client behaving like the XMLHttpRequest-based loader of the
relative routing strategy: it enforces a client-side timeout of 5s and
accepts the status codes 0 and 200 only. Status 0 is what non-HTTP schemes
report; WithFS registers a "file" scheme transport, so that page shells
opened from the file system can load their fragments, too.

NewStandard returns a client behaving like the fetch-based loader of the
server routing strategy: any 2xx status means success, and there is no
client-side timeout.
*/
package fetch
