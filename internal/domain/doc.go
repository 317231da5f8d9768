// Package domain models the hazard feeds rendered as map overlays.
//
// # Data Sources
//
// The backend exposes one JSON endpoint per source. Every list endpoint returns
// an array of flat records; any endpoint may instead answer with a non-2xx
// status and either {"error": "..."} or a plain-text body.
//
//	/api/eonet          NASA EONET natural events, pre-scored by severity (0-110)
//	/api/gdacs          GDACS disaster alerts with a green/orange/red alert level
//	/api/disease        disease outbreak reports, geocoded to country centroids
//	/api/risk-analysis  backend-aggregated risk zones (clusters of events)
//	/api/weather        current weather at a single point (object, not array)
//
// # Record Conventions
//
// Records are decoded leniently: numbers may arrive as JSON numbers or numeric
// strings, and any field may be absent or null. Absent text fields render as a
// placeholder; absent numbers stay nil so "missing" and "zero" remain distinct.
//
// Coordinates:
//
//	A record is drawn only when both latitude and longitude are present.
//	Under the default CoordinatePolicyTruthy a value of exactly 0 also counts
//	as missing, so events on the equator or the prime meridian are skipped.
//	CoordinatePolicyStrict only rejects absent or null values.
//
// Severity inputs:
//
//	EONET   score        numeric, higher is worse, <= 0 or absent means unscored
//	GDACS   alert_level  "red" | "orange" | "green", case-insensitive
//	Risk    risk_score   unbounded sum of the contributing event scores
//
// # Layer Lifecycle
//
// Each source is one layer. A layer is Hidden until toggled on, Loading while
// its fetch is in flight and Displayed once its markers are drawn. The risk
// layer loads once and stays LoadedOnce until explicitly unloaded.
package domain
