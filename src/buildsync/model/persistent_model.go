// Package model contains the repository layer representations of buildsync entities.
package model

// PersistentModelRecordVersion is the version written into new records.
const PersistentModelRecordVersion = 1

// PersistentModel is the stored representation of a project's structural snapshot.
type PersistentModel struct {
	Version          int      `cbor:"1,keyasint"`
	Project          string   `cbor:"2,keyasint"`
	RootDir          string   `cbor:"3,keyasint"`
	ProjectDir       string   `cbor:"4,keyasint"`
	ProjectPath      string   `cbor:"5,keyasint"`
	BuildDir         string   `cbor:"6,keyasint"`
	BuildScript      string   `cbor:"7,keyasint,omitempty"`
	SubprojectPaths  []string `cbor:"8,keyasint"`
	SourceRoots      []string `cbor:"9,keyasint"`
	DerivedResources []string `cbor:"10,keyasint"`
	LinkedResources  []string `cbor:"11,keyasint"`
	Natures          []string `cbor:"12,keyasint"`
	Classpath        []string `cbor:"13,keyasint"`
	GradleVersion    string   `cbor:"14,keyasint,omitempty"`
	// SyncedAtUnixNano is zero when the sync time is unknown.
	SyncedAtUnixNano int64 `cbor:"15,keyasint,omitempty"`
}
