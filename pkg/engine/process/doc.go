// Package process runs the render engine as a separate worker process.
//
// The worker and the pipeline talk over the worker's stdin and stdout, one
// JSON object per line:
//
//	worker -> {"type":"ready","engine":"oksvg"}
//	client -> {"type":"render","svg":"<base64>","scale":2}
//	worker -> {"type":"ok","png":"<base64>","width":40,"height":40}
//	worker -> {"type":"fail","reason":"missing intrinsic size"}
//
// The worker writes the ready frame once at startup and then answers
// every render frame with exactly one ok or fail frame, in order. Anything
// the worker prints on stderr is passed through to the client's Stderr.
//
// [Serve] is the worker side (the "multicon engine" command). [Engine] is
// the client side and implements engine.Engine.
package process
