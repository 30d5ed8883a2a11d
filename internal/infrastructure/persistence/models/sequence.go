package models

// NumberSequenceModel is the per-period counter behind document numbers.
// SeqKey is PREFIX+YYYYMM.
type NumberSequenceModel struct {
	SeqKey    string `gorm:"column:seq_key;type:varchar(40);primaryKey"`
	LastValue int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (NumberSequenceModel) TableName() string {
	return "number_sequences"
}
