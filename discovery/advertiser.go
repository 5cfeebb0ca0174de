package discovery

// Advertiser is a thin, write-only view over a Discovery engine (§4.9): it
// exposes only the local-advertisement operations, so a component that
// should never query or resolve peers can be handed one without also
// getting Track/Lookup/GetKnownServices access.
type Advertiser struct {
	d *Discovery
}

// NewAdvertiser returns an Advertiser backed by d.
func NewAdvertiser(d *Discovery) *Advertiser {
	return &Advertiser{d: d}
}

// Add registers info's records with the responder.
func (a *Advertiser) Add(info ServiceInfo) error {
	return a.d.Advertise(info)
}

// Remove withdraws every locally-advertised instance of service, sending
// goodbye records to peers.
func (a *Advertiser) Remove(service string) error {
	return a.d.Withdraw(service)
}
