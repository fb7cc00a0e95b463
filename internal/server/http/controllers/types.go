package controllers

import "github.com/rzbill/cuidd/internal/ledger"

// mintReq represents a request to mint identifiers.
type mintReq struct {
	Kind  string `json:"kind"`
	Count int    `json:"count"`
	Label string `json:"label"`
}

type mintResp struct {
	IDs []ledger.Record `json:"ids"`
}

type generateResp struct {
	IDs []string `json:"ids"`
}

type errorResp struct {
	Error string `json:"error"`
}
