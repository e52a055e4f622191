// Package httpengine exposes a render engine as an HTTP service and
// provides the matching client engine.
//
// Endpoints:
//
//	GET  /healthz  200 when the service is up
//	POST /render   {"svg":"<base64 markup>","scale":2}
//	               200 {"png":"<base64>","width":40,"height":40}
//	               422 {"error":"missing intrinsic size"}  (the item cannot be rendered)
//	               400 {"error":"..."}                     (bad request body)
//
// The service renders requests independently; ordering and the single
// in-flight request per batch are the client's concern.
package httpengine
