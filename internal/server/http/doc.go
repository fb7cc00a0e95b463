// Package httpserver is the JSON REST gateway for cuidd.
//
// Routes:
//
//	GET    /v1/healthz
//	GET    /v1/kinds
//	POST   /v1/ids/mint       {"kind":"todo","count":3,"label":"..."}
//	GET    /v1/ids/generate?count=N
//	GET    /v1/ids/inspect?id=
//	GET    /v1/ids/list?kind=&after=&limit=&reverse=&filter=
//	DELETE /v1/ids/revoke?id=
//
// Example:
//
//	s := httpserver.New(rt, logger)
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
