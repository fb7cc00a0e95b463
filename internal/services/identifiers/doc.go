// Package identifiersvc is the business layer behind both transports: it
// mints identifiers for entity kinds, records them in the ledger, and
// answers inspection and listing queries.
//
// Example:
//
//	svc := identifiersvc.New(rt, logger)
//	recs, _ := svc.Mint(ctx, identifiersvc.MintRequest{Kind: "todo", Count: 3})
//	info, _ := svc.Inspect(ctx, recs[0].ID)
//	page, _ := svc.List(ctx, identifiersvc.ListRequest{Kind: "todo", Filter: `counter > 0`})
package identifiersvc
