// Package api implements the client for the upstream comment service.
//
// The upstream contract is narrow but quirky:
//
//   - GET /comments/{media}/{page}?sort=newest returns {comments: [...]};
//     an empty list or a 404 means the end of pagination.
//   - 429 means slow down: the worker sleeps a fixed cooldown and retries
//     the same page without advancing. Retries are unbounded since limits
//     are expected to clear.
//   - Any other non-200 gives no way to tell an outage from end-of-data.
//     The fetch stops and the result is flagged Partial so the target is
//     revisited on the next run rather than recorded as complete.
//
// Auth is a two-step handshake: the identity provider's token is verified
// first (VerifyToken), then exchanged for a session token (Authenticate)
// that accompanies every fetch.
package api
