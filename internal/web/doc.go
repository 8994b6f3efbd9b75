// Package web serves the review dashboard on localhost.
//
// Routes:
//
//	GET  /api/review-data  current findings report, 404 before one is set
//	GET  /api/config       static capability descriptor
//	POST /api/export       render {format, data} as markdown or json
//	POST /api/commit       acknowledge, or record {action: continue|abort}
//	GET  /api/events       websocket with report snapshots and status
//
// Every other non-API path serves the single-page dashboard. The first
// decision posted to /api/commit is delivered on [Server.Decisions].
package web
