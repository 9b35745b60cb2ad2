package entity

import (
	"time"
)

const DefaultMimetype = "application/octet-stream"

// FileRecord is the metadata of one uploaded file. StorageKey locates the
// bytes in the active blob store.
type FileRecord struct {
	ID         int64     `json:"id" firestore:"id" gorm:"column:id;primaryKey;autoIncrement:false"`
	Filename   string    `json:"filename" firestore:"filename" gorm:"column:filename;not null;index"`
	StorageKey string    `json:"storageKey" firestore:"storageKey" gorm:"column:storage_key;not null;uniqueIndex"`
	Size       int64     `json:"size" firestore:"size" gorm:"column:size;not null"`
	Mimetype   string    `json:"mimetype" firestore:"mimetype" gorm:"column:mimetype;not null"`
	UploadDate time.Time `json:"uploadDate" firestore:"uploadDate" gorm:"column:upload_date;not null"`
	Favorite   bool      `json:"favorite" firestore:"favorite" gorm:"column:favorite;not null;default:false"`
}

func (FileRecord) TableName() string {
	return "file_records"
}

// Clone returns an independent copy.
func (r *FileRecord) Clone() *FileRecord {
	copied := *r
	return &copied
}

// RecordPatch carries the mutable fields of a FileRecord. Nil fields are left untouched.
type RecordPatch struct {
	Filename *string
	Size     *int64
	Mimetype *string
	Favorite *bool
}

// Apply merges the patch into r. ID, StorageKey and UploadDate never change.
func (p RecordPatch) Apply(r *FileRecord) {
	if p.Filename != nil {
		r.Filename = *p.Filename
	}
	if p.Size != nil {
		r.Size = *p.Size
	}
	if p.Mimetype != nil {
		r.Mimetype = *p.Mimetype
	}
	if p.Favorite != nil {
		r.Favorite = *p.Favorite
	}
}
