// Package pebblestore wraps Pebble with an fsync policy, indexed batches,
// prefix scans and a metrics hook. The issuance ledger is its only client.
//
//	db, err := pebblestore.Open(pebblestore.Options{DataDir: "./data", Fsync: pebblestore.FsyncModeInterval})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	b := db.NewBatch()
//	_ = b.Set([]byte("k"), []byte("v"), nil)
//	_ = db.CommitBatch(ctx, b)
//	b.Close()
//
//	_ = db.ScanPrefix([]byte("idx/todo/"), nil, false, func(k, v []byte) bool { return true })
package pebblestore
