// Package observability provides structured logging for the LLM gateway.
//
// Every provider invocation is logged with its model, serving tier,
// elapsed time, and token counts when the provider reports them. Fallback
// events and per-attempt failures carry tier and model context so a
// request's full path through the fallback plan can be reconstructed from
// logs alone.
package observability
