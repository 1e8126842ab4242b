package domain

// PoolStats reports the wait bookkeeping of the ticket pool.
type PoolStats struct {
	MaxCapacity      int            `json:"maxCapacity"`
	Available        int            `json:"available"`
	Booked           int            `json:"booked"`
	WaitingProducers int            `json:"waitingProducers"`
	RegistrySize     int            `json:"registrySize"`
	WaitingConsumers map[string]int `json:"waitingConsumers"`
}

// AdminStatus reports the two admin pause switches.
type AdminStatus struct {
	VendorsStopped   bool `json:"vendorsStopped"`
	CustomersStopped bool `json:"customersStopped"`
}
