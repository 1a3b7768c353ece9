/*
Copyright © 2025 Acronis International GmbH.

Released under MIT license.
*/

package checker

import (
	"sort"
)

// Names of the five checks the pipeline executes, in their fixed order.
const (
	CheckNameDiscovery          = "Discovery Endpoint"
	CheckNameJWKS               = "JWKS Endpoint"
	CheckNameRegistration       = "Registration Endpoint"
	CheckNameRegistrationCRUD   = "Registration CRUD"
	CheckNameMetadataCompliance = "Metadata Compliance"
)

// Result is the immutable outcome of a single check.
type Result struct {
	Name    string
	Passed  bool
	Message string

	// Details explains a passed check's findings or a failed check's cause.
	// Its shape is check-specific and is nil when a check has nothing to attach.
	Details Details
}

// Details is an ordered list of named values. Ordering is part of the contract:
// it makes report rendering deterministic.
type Details []DetailField

// DetailField is a single key/value pair of a Details list.
type DetailField struct {
	Key   string
	Value DetailValue
}

// DetailValue is a tagged variant covering every shape a detail value may take:
// a scalar, a sequence or a nested mapping. Keeping it closed lets the report
// renderer switch over it exhaustively.
type DetailValue interface {
	isDetailValue()
}

type (
	// DetailString is a string detail value.
	DetailString string
	// DetailInt is an integer detail value.
	DetailInt int
	// DetailNumber is a floating-point detail value.
	DetailNumber float64
	// DetailBool is a boolean detail value.
	DetailBool bool
	// DetailNull is a placeholder for an absent value (e.g. a key without "alg").
	DetailNull struct{}
	// DetailSeq is a sequence of detail values.
	DetailSeq []DetailValue
	// DetailMapping is a nested mapping of detail values.
	DetailMapping []DetailField
)

func (DetailString) isDetailValue()  {}
func (DetailInt) isDetailValue()     {}
func (DetailNumber) isDetailValue()  {}
func (DetailBool) isDetailValue()    {}
func (DetailNull) isDetailValue()    {}
func (DetailSeq) isDetailValue()     {}
func (DetailMapping) isDetailValue() {}

// detailFromJSON converts a decoded JSON value into a DetailValue.
// Mapping keys are sorted since decoded JSON objects carry no order.
func detailFromJSON(v interface{}) DetailValue {
	switch val := v.(type) {
	case nil:
		return DetailNull{}
	case string:
		return DetailString(val)
	case bool:
		return DetailBool(val)
	case float64:
		return DetailNumber(val)
	case []interface{}:
		seq := make(DetailSeq, 0, len(val))
		for _, item := range val {
			seq = append(seq, detailFromJSON(item))
		}
		return seq
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for key := range val {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		mapping := make(DetailMapping, 0, len(keys))
		for _, key := range keys {
			mapping = append(mapping, DetailField{Key: key, Value: detailFromJSON(val[key])})
		}
		return mapping
	default:
		return DetailNull{}
	}
}

// detailsFromDocument attaches a whole JSON document (e.g. a raw discovery document
// or an unexpected registration response) as the details of a failed check.
func detailsFromDocument(doc map[string]interface{}) Details {
	mapping, ok := detailFromJSON(doc).(DetailMapping)
	if !ok {
		return nil
	}
	return Details(mapping)
}
