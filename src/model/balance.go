package model

// AssetBalance is one currency row from the account balance endpoint.
type AssetBalance struct {
	Ccy       string  `json:"ccy"`
	Available float64 `json:"available"`
	Frozen    float64 `json:"frozen"`
	EqUsd     float64 `json:"eq_usd"`
}

// AssetHistoryPoint is one sample of total account equity. The local
// series is append-only, at most one point per rolling hour, capped at
// HistoryMaxPoints entries. The JSON field names are the wire format
// shared with the remote sync collaborator.
type AssetHistoryPoint struct {
	Ts      int64   `json:"ts"`
	TotalEq float64 `json:"totalEq"`
}

// HistoryMaxPoints caps the persisted equity series; oldest points are
// evicted first.
const HistoryMaxPoints = 1000
