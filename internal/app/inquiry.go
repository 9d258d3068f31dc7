package app

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/santhosh-tekuri/jsonschema/v5"

	"villa_catalog/internal/domain"
)

//go:embed schemas/inquiry.json
var inquirySchemaJSON []byte

var inquirySchema = mustCompileInquirySchema()

func mustCompileInquirySchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.AssertFormat = true
	if err := c.AddResource("inquiry.json", bytes.NewReader(inquirySchemaJSON)); err != nil {
		panic(fmt.Sprintf("add inquiry schema: %v", err))
	}
	return c.MustCompile("inquiry.json")
}

// InquiryService accepts booking and sales inquiries. There is no mail or CRM
// backend: accepted inquiries are logged and acknowledged with a reference.
type InquiryService struct {
	store domain.ContentStore
}

func NewInquiryService(store domain.ContentStore) *InquiryService {
	return &InquiryService{store: store}
}

// Submit validates body against the inquiry schema and checks the villa
// exists. Schema violations wrap domain.ErrInvalid.
func (s *InquiryService) Submit(ctx context.Context, body []byte) (domain.Inquiry, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return domain.Inquiry{}, fmt.Errorf("%w: body is not valid JSON: %v", domain.ErrInvalid, err)
	}
	if err := inquirySchema.Validate(raw); err != nil {
		return domain.Inquiry{}, fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	var in domain.Inquiry
	if err := json.Unmarshal(body, &in); err != nil {
		return domain.Inquiry{}, fmt.Errorf("%w: %v", domain.ErrInvalid, err)
	}
	if in.CheckIn != "" && in.CheckOut != "" {
		ci, _ := time.Parse(time.DateOnly, in.CheckIn)
		co, _ := time.Parse(time.DateOnly, in.CheckOut)
		if !co.After(ci) {
			return domain.Inquiry{}, fmt.Errorf("%w: checkOut must be after checkIn", domain.ErrInvalid)
		}
	}

	v, ok := s.store.VillaByID(ctx, in.VillaID)
	if !ok {
		return domain.Inquiry{}, domain.ErrNotFound
	}
	if in.Kind == "booking" && v.ListingType != domain.ModeRent {
		return domain.Inquiry{}, fmt.Errorf("%w: villa %s is not for rent", domain.ErrInvalid, in.VillaID)
	}
	if in.Kind == "sale" && v.ListingType != domain.ModeSale {
		return domain.Inquiry{}, fmt.Errorf("%w: villa %s is not for sale", domain.ErrInvalid, in.VillaID)
	}

	in.Reference = uuid.NewString()
	log.Info().
		Str("reference", in.Reference).
		Str("villa", in.VillaID).
		Str("kind", in.Kind).
		Str("lang", in.Language).
		Msg("inquiry received")
	return in, nil
}
