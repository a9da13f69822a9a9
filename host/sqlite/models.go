package sqlite

import "time"

// documentRecord stores a persisted microflow. Body is the JSON encoded
// host.Document; the other columns are kept for lookup.
type documentRecord struct {
	ID      string    `gorm:"primaryKey;size:64"`
	Module  string    `gorm:"index:idx_documents_module_name;size:255;not null"`
	Name    string    `gorm:"index:idx_documents_module_name;size:255;not null"`
	Body    string    `gorm:"type:text;not null"`
	SavedAt time.Time `gorm:"index;not null"`
}

func (documentRecord) TableName() string { return "documents" }

type moduleRecord struct {
	Name         string `gorm:"primaryKey;size:255"`
	FromAppStore bool   `gorm:"not null;default:false"`
}

func (moduleRecord) TableName() string { return "modules" }
