// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package schema owns the closed institution field schema: the field names,
// their priority classes, and the institution types each specialized field
// applies to. The extraction and quality-scoring stages read the same
// tables; adding a field means updating this package and nothing else.
//
// See docs/ARCHITECTURE.md § Field Schema.
package schema

import "github.com/Mohammed-Abed-Alkareem/LLM-Institution-Profiler/pkg/types"

// Version identifies the frozen schema build. It participates in extraction
// cache keys so a schema change invalidates prior extractions.
const Version = "2"

// Class is the priority class assigned to each schema field.
type Class string

const (
	ClassCritical    Class = "critical"
	ClassImportant   Class = "important"
	ClassValuable    Class = "valuable"
	ClassSpecialized Class = "specialized"
	ClassEnhanced    Class = "enhanced"
)

// Weights maps each class to its share of the base quality score.
var Weights = map[Class]float64{
	ClassCritical:    0.40,
	ClassImportant:   0.25,
	ClassValuable:    0.20,
	ClassSpecialized: 0.10,
	ClassEnhanced:    0.05,
}

// Field describes one schema field.
type Field struct {
	Name  string
	Class Class

	// Types lists the institution types a specialized field applies to.
	// Empty for non-specialized fields (they apply to every type).
	Types []types.InstitutionType
}

// fields is the frozen schema. Order is stable; the extraction prompt and
// the scorer iterate it in this order.
var fields = []Field{
	// Critical: essential identification.
	{Name: "name", Class: ClassCritical},
	{Name: "official_name", Class: ClassCritical},
	{Name: "type", Class: ClassCritical},
	{Name: "website", Class: ClassCritical},
	{Name: "description", Class: ClassCritical},
	{Name: "location_city", Class: ClassCritical},
	{Name: "location_country", Class: ClassCritical},
	{Name: "founded", Class: ClassCritical},

	// Important: key operational details.
	{Name: "address", Class: ClassImportant},
	{Name: "state", Class: ClassImportant},
	{Name: "postal_code", Class: ClassImportant},
	{Name: "phone", Class: ClassImportant},
	{Name: "email", Class: ClassImportant},
	{Name: "ceo", Class: ClassImportant},
	{Name: "industry_sector", Class: ClassImportant},
	{Name: "size", Class: ClassImportant},
	{Name: "number_of_employees", Class: ClassImportant},
	{Name: "headquarters_location", Class: ClassImportant},

	// Valuable: detailed organizational info.
	{Name: "leadership", Class: ClassValuable},
	{Name: "president", Class: ClassValuable},
	{Name: "chairman", Class: ClassValuable},
	{Name: "key_people", Class: ClassValuable},
	{Name: "annual_revenue", Class: ClassValuable},
	{Name: "legal_status", Class: ClassValuable},
	{Name: "entity_type", Class: ClassValuable},
	{Name: "fields_of_focus", Class: ClassValuable},
	{Name: "services_offered", Class: ClassValuable},
	{Name: "products", Class: ClassValuable},
	{Name: "operating_countries", Class: ClassValuable},

	// Specialized: domain-specific, filtered by institution type.
	{Name: "student_population", Class: ClassSpecialized, Types: universities},
	{Name: "faculty_count", Class: ClassSpecialized, Types: universities},
	{Name: "programs_offered", Class: ClassSpecialized, Types: universities},
	{Name: "endowment", Class: ClassSpecialized, Types: universities},
	{Name: "campus_size", Class: ClassSpecialized, Types: universities},
	{Name: "research_areas", Class: ClassSpecialized, Types: eduMed},
	{Name: "departments", Class: ClassSpecialized, Types: eduMed},
	{Name: "accreditation_bodies", Class: ClassSpecialized, Types: eduMed},
	{Name: "patient_capacity", Class: ClassSpecialized, Types: hospitals},
	{Name: "bed_count", Class: ClassSpecialized, Types: hospitals},
	{Name: "medical_specialties", Class: ClassSpecialized, Types: hospitals},
	{Name: "stock_symbol", Class: ClassSpecialized, Types: banks},
	{Name: "market_cap", Class: ClassSpecialized, Types: banks},
	{Name: "branches_count", Class: ClassSpecialized, Types: banks},
	{Name: "regulatory_body", Class: ClassSpecialized, Types: banks},
	{Name: "subsidiaries", Class: ClassSpecialized, Types: banks},
	{Name: "assets_under_management", Class: ClassSpecialized, Types: banks},

	// Enhanced: rich content and relationships.
	{Name: "notable_achievements", Class: ClassEnhanced},
	{Name: "rankings", Class: ClassEnhanced},
	{Name: "awards", Class: ClassEnhanced},
	{Name: "certifications", Class: ClassEnhanced},
	{Name: "affiliations", Class: ClassEnhanced},
	{Name: "partnerships", Class: ClassEnhanced},
	{Name: "publications", Class: ClassEnhanced},
	{Name: "patents", Class: ClassEnhanced},
	{Name: "financial_data", Class: ClassEnhanced},
	{Name: "budget", Class: ClassEnhanced},
	{Name: "facilities", Class: ClassEnhanced},
	{Name: "recent_news", Class: ClassEnhanced},
	{Name: "press_releases", Class: ClassEnhanced},
}

var (
	universities = []types.InstitutionType{types.TypeUniversity}
	hospitals    = []types.InstitutionType{types.TypeHospital}
	banks        = []types.InstitutionType{types.TypeBank}
	eduMed       = []types.InstitutionType{types.TypeUniversity, types.TypeHospital}
)

// byName indexes the schema for O(1) lookups.
var byName = func() map[string]Field {
	m := make(map[string]Field, len(fields))
	for _, f := range fields {
		m[f.Name] = f
	}
	return m
}()

// Fields returns the schema in stable order. Callers must not mutate the
// returned slice.
func Fields() []Field { return fields }

// Lookup returns the field definition for name.
func Lookup(name string) (Field, bool) {
	f, ok := byName[name]
	return f, ok
}

// FieldNames returns all schema field names in stable order.
func FieldNames() []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	return names
}

// AppliesTo reports whether the field counts for the given institution
// type. Non-specialized fields apply to every type; specialized fields
// apply only to their tagged types, and to none when the type is general
// or unknown.
func (f Field) AppliesTo(t types.InstitutionType) bool {
	if f.Class != ClassSpecialized {
		return true
	}
	if t == types.TypeGeneral || t == types.TypeUnknown {
		return false
	}
	for _, ft := range f.Types {
		if ft == t {
			return true
		}
	}
	return false
}
