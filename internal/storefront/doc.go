// Package storefront provides the HTTP client for the storefront API.
//
// # Overview
//
// The client is the only component that talks to the network. It issues
// typed reads (dashboard metrics, pending orders, discovered products, ad
// campaigns, customer messages) and mutations (fulfill an order, respond to a
// message, add a product, create a campaign) against the /api/v1 surface.
//
// # Error Handling
//
// Nothing escapes this package except *Error values. Every failure carries
// an ErrorKind:
//
//   - KindNetwork: connection failures, per-request timeouts, 502/503/504
//   - KindDecode: the body was not the JSON we expected
//   - KindRejected: any other 4xx/5xx answer; the API's "detail" text is kept
//   - KindAlreadyInFlight: produced by the dispatcher, never by the client
//
// Use KindOf to classify an error after wrapping.
//
// # Request Handling
//
// All requests:
//   - Derive a per-request timeout from the caller's context (WithTimeout)
//   - Set Accept: application/json and User-Agent: shopdeck/0.1
//   - Are not retried; polling and user actions decide what happens next
//
// # URL Construction
//
// NewClient accepts "host:port" or a full URL. The scheme defaults to http
// and any path is replaced by the /api/v1/ prefix:
//
//   - "127.0.0.1:8000" → http://127.0.0.1:8000/api/v1/
//   - "https://shop.example.com/x" → https://shop.example.com/api/v1/
//
// # Thread Safety
//
// Client holds no mutable state and is safe for concurrent use by every view.
package storefront
