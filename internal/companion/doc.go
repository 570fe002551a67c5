// Package companion simulates the companion application and its data service
// for development and tests.
//
// A [Companion] accepts launch requests on POST /v1/launch, decides the
// consent according to its [Mode] and answers on the request's return
// channel with a signed session token. Sessions it granted can then be used
// against the permission-access endpoints, which decrypt the request with the
// session key and answer with a payload sealed and signed by the companion.
package companion
