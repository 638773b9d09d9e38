// package transport contains implementations to requirements on *message syntaxes*
// defined by http related RFCs.
//
// as of 2022.06, RFCs that were to define HTTP/1.1 (RFC753x) are obsoleted by:
//
//	HTTP Semantics (RFC9110)
//	HTTP Caching (RFC9111) and
//	HTTP/1.1 (RFC9112)
//
// only the HTTP/1 message syntax is implemented here, one request and one
// response per connection. responses are always read in full, framed by
// Content-Length, by the chunked transfer coding, or by connection close
// (RFC9112 section 6.3).
//
// net/http components are reused on the "semantics" part ([net/http.Header], [net/textproto], etc.)

package transport
