package handlers

import (
	"storefront/internal/events"
	"storefront/internal/sdk"

	"github.com/google/uuid"
)

const defaultSearchUnitID = "productPage"

// Search handles SEARCH_REQUEST.
type Search struct{}

func (Search) EventTypes() []events.Type { return []events.Type{events.SearchRequest} }

func (h Search) CanHandle(ev events.Event) bool { return handles(h.EventTypes(), ev) }

func (Search) Handle(s sdk.SDK, ev events.Event) error {
	var p events.SearchPayload
	if err := ev.Decode(&p); err != nil {
		return err
	}
	unitID := p.SearchUnitID
	if unitID == "" {
		unitID = defaultSearchUnitID
	}
	requestID := p.SearchRequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}

	filters := make([]sdk.SearchFilter, 0, len(p.Filters))
	for _, f := range p.Filters {
		filters = append(filters, sdk.SearchFilter{Attribute: f.Attribute, In: f.In, Eq: f.Eq})
	}
	sorts := make([]sdk.SearchSort, 0, len(p.Sort))
	for _, o := range p.Sort {
		sorts = append(sorts, sdk.SearchSort{Attribute: o.Attribute, Direction: o.Direction})
	}

	s.Context.SetSearchInput(sdk.SearchInput{Units: []sdk.SearchUnit{{
		SearchUnitID:    unitID,
		SearchRequestID: requestID,
		QueryTypes:      []string{"products"},
		Phrase:          p.Query,
		PageSize:        p.PageSize,
		CurrentPage:     p.CurrentPage,
		Filter:          filters,
		Sort:            sorts,
	}}})
	s.Publish.SearchRequestSent(unitID)
	return nil
}
