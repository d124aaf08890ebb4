// Package web holds the static client assets the capture API serves.
package web

import _ "embed"

// CollectorJS is the checkout collector script served at
// /checkout/collector.js.
//
//go:embed collector.js
var CollectorJS []byte
