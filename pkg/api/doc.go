// Package api defines the swisscoin.v1 request and response messages.
//
// Messages are plain structs carried by the Connect protocol with the
// JSON codec in this package. Money travels as decimal strings in major
// units ("12.50"); timestamps are Unix seconds; dates are YYYY-MM-DD.
package api
