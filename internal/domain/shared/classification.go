package shared

// BusinessType classifies a buyer organisation
type BusinessType string

const (
	BusinessTypeSchool     BusinessType = "school"
	BusinessTypeCollege    BusinessType = "college"
	BusinessTypeHotel      BusinessType = "hotel"
	BusinessTypeHospital   BusinessType = "hospital"
	BusinessTypeCorporate  BusinessType = "corporate"
	BusinessTypeIndustrial BusinessType = "industrial"
	BusinessTypeIndividual BusinessType = "individual"
	BusinessTypeOther      BusinessType = "other"
)

// AllBusinessTypes lists every valid business type
func AllBusinessTypes() []BusinessType {
	return []BusinessType{
		BusinessTypeSchool, BusinessTypeCollege, BusinessTypeHotel, BusinessTypeHospital,
		BusinessTypeCorporate, BusinessTypeIndustrial, BusinessTypeIndividual, BusinessTypeOther,
	}
}

// IsValid checks if the business type is valid
func (b BusinessType) IsValid() bool {
	for _, t := range AllBusinessTypes() {
		if b == t {
			return true
		}
	}
	return false
}

// String returns the string representation
func (b BusinessType) String() string {
	return string(b)
}
