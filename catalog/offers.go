package catalog

import "errors"

// ErrNoOffers is returned when a data file defines no retention offers
var ErrNoOffers = errors.New("offer list is empty")

// Offer is one retention incentive
type Offer struct {
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
}

// Offers is the fixed, priority-ordered list of retention offers.
// The first entry is the strongest retention hook.
type Offers struct {
	list []Offer
}

// NewOffers copies the given list
func NewOffers(list []Offer) (*Offers, error) {
	if len(list) == 0 {
		return nil, ErrNoOffers
	}
	return &Offers{list: append([]Offer(nil), list...)}, nil
}

// At returns the offer at index mod length. Negative indexes wrap too.
func (o *Offers) At(index int) Offer {
	n := len(o.list)
	i := index % n
	if i < 0 {
		i += n
	}
	return o.list[i]
}

// IsLast reports whether index is the final offer in the list
func (o *Offers) IsLast(index int) bool {
	return index == len(o.list)-1
}

// Len returns the number of offers
func (o *Offers) Len() int {
	return len(o.list)
}
