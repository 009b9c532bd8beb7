package models

// Hospital is a nearby care provider. Hospitals are seed data only.
type Hospital struct {
	ID      int     `json:"id" yaml:"id" gorm:"primaryKey;autoIncrement:false"`
	Name    string  `json:"name" yaml:"name"`
	Address string  `json:"address" yaml:"address"`
	Rating  float64 `json:"rating" yaml:"rating"`
}
