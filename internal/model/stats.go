package model

// StoreStats summarizes the persistence layer for the admin endpoint.
type StoreStats struct {
	Backend  string `json:"backend"`
	Users    int64  `json:"users"`
	Officers int64  `json:"officers"`
	Games    int64  `json:"games"`
}
