package store

import (
	"time"
)

// DB is the persistence interface for run state and scan results.
type DB interface {
	Close() error
	Migrate() error
	SaveRun(run *RunRecord) error
	UpdateRun(run *RunRecord) error
	GetRun(id string) (*RunRecord, error)
	ListRuns(query RunsQuery) (*RunsList, error)
	DeleteRun(id string) error
	SaveScan(scan *ScanRecord) error
	SaveSamples(scanID string, samples []Sample) error
	GetScan(id string) (*ScanRecord, error)
	ListScans(page, perPage int) (*ScansList, error)
	GetScanSamples(scanID string, page, perPage int) (*SamplesPage, error)
}

// RunsQuery represents query parameters for listing runs
type RunsQuery struct {
	Status  string `json:"status,omitempty"`
	Page    int    `json:"page"`
	PerPage int    `json:"perPage"`
}

// RunsList represents a paginated runs response
type RunsList struct {
	Runs       []RunRecord `json:"runs"`
	TotalCount int         `json:"totalCount"`
	Page       int         `json:"page"`
	PerPage    int         `json:"perPage"`
	TotalPages int         `json:"totalPages"`
}

// ScansList represents a paginated scans response
type ScansList struct {
	Scans      []ScanRecord `json:"scans"`
	TotalCount int          `json:"totalCount"`
	Page       int          `json:"page"`
	PerPage    int          `json:"perPage"`
	TotalPages int          `json:"totalPages"`
}

// SamplesPage represents a paginated scan samples response
type SamplesPage struct {
	Samples    []Sample `json:"samples"`
	TotalCount int      `json:"totalCount"`
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
	TotalPages int      `json:"totalPages"`
}

// RunRecord is a persisted run. The full engine state lives in StateJSON;
// the scalar columns are denormalized for listing and filtering without
// deserializing every row.
type RunRecord struct {
	ID            string    `json:"id" db:"id"`
	Seed          string    `json:"seed" db:"seed"`
	Status        string    `json:"status" db:"status"`
	DifficultyID  string    `json:"difficulty_id" db:"difficulty_id"`
	ConditionID   string    `json:"condition_id" db:"condition_id"`
	Floor         int       `json:"floor" db:"floor"`
	PlayerHP      int       `json:"player_hp" db:"player_hp"`
	PlayerMaxHP   int       `json:"player_max_hp" db:"player_max_hp"`
	StateJSON     string    `json:"state_json" db:"state_json"`
	EngineVersion string    `json:"engine_version" db:"engine_version"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// ScanRecord is the summary row of one batch simulation.
type ScanRecord struct {
	ID            string    `json:"id" db:"id"`
	Label         string    `json:"label" db:"label"`
	BaseSeed      string    `json:"base_seed" db:"base_seed"`
	PolicyName    string    `json:"policy_name" db:"policy_name"`
	RunCount      int       `json:"run_count" db:"run_count"`
	Victories     int       `json:"victories" db:"victories"`
	Defeats       int       `json:"defeats" db:"defeats"`
	AvgFloor      float64   `json:"avg_floor" db:"avg_floor"`
	AvgFinalHP    float64   `json:"avg_final_hp" db:"avg_final_hp"`
	ParamsJSON    string    `json:"params_json" db:"params_json"`
	EngineVersion string    `json:"engine_version" db:"engine_version"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Sample is one simulated run inside a scan.
type Sample struct {
	ID           int64  `json:"id" db:"id"`
	ScanID       string `json:"scan_id" db:"scan_id"`
	Seed         string `json:"seed" db:"seed"`
	Status       string `json:"status" db:"status"`
	FloorReached int    `json:"floor_reached" db:"floor_reached"`
	FinalHP      int    `json:"final_hp" db:"final_hp"`
	Turns        int    `json:"turns" db:"turns"`
}
