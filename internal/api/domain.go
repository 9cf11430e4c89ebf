package api

import (
	"github.com/JaimeStill/invoicer/internal/invoices"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Invoices invoices.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	return &Domain{
		Invoices: invoices.FromInfrastructure(
			runtime.Infrastructure,
			&runtime.Pipeline,
			runtime.Pagination,
			runtime.Logger,
		),
	}
}
