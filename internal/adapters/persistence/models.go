package persistence

import (
	"time"
)

// ShipmentModel represents the shipments table.
// JSON payloads are stored as strings in JSONB columns (TEXT on SQLite);
// repositories marshal/unmarshal against the domain records.
type ShipmentModel struct {
	ID              string     `gorm:"column:id;primaryKey"`
	CountID         int64      `gorm:"column:countid;unique;not null"`
	CompanyID       string     `gorm:"column:company_id;not null;index"`
	OrderType       string     `gorm:"column:order_type;not null;default:'SEA_FCL'"`
	TransactionType string     `gorm:"column:transaction_type;not null;default:'IMPORT'"`
	IncotermCode    string     `gorm:"column:incoterm_code"`
	Status          int        `gorm:"column:status;not null;default:1001;index"`
	IssuedInvoice   bool       `gorm:"column:issued_invoice;not null;default:false"`
	MigratedFromV1  bool       `gorm:"column:migrated_from_v1;not null;default:false"`
	Trash           bool       `gorm:"column:trash;not null;default:false"`
	OriginPort      string     `gorm:"column:origin_port"`
	OriginTerminal  *string    `gorm:"column:origin_terminal"`
	DestPort        string     `gorm:"column:dest_port"`
	DestTerminal    *string    `gorm:"column:dest_terminal"`
	CargoReadyDate  *time.Time `gorm:"column:cargo_ready_date"`
	ETD             *time.Time `gorm:"column:etd"`
	ETA             *time.Time `gorm:"column:eta"`
	Cargo           *string    `gorm:"column:cargo;type:jsonb"`
	Booking         *string    `gorm:"column:booking;type:jsonb"`
	Parties         *string    `gorm:"column:parties;type:jsonb"`
	BLDocument      *string    `gorm:"column:bl_document;type:jsonb"`
	TypeDetails     *string    `gorm:"column:type_details;type:jsonb"`
	ExceptionData   *string    `gorm:"column:exception_data;type:jsonb"`
	RouteNodes      *string    `gorm:"column:route_nodes;type:jsonb"`
	StatusHistory   string     `gorm:"column:status_history;type:jsonb;not null;default:'[]'"`
	Creator         *string    `gorm:"column:creator;type:jsonb"`
	CreatedAt       time.Time  `gorm:"column:created_at;not null"`
	UpdatedAt       time.Time  `gorm:"column:updated_at;not null"`
}

func (ShipmentModel) TableName() string {
	return "shipments"
}

// ShipmentWorkflowModel represents the shipment_workflows table, paired
// 1:1 with shipments.
type ShipmentWorkflowModel struct {
	ShipmentID    string    `gorm:"column:shipment_id;primaryKey"`
	CompanyID     string    `gorm:"column:company_id;not null"`
	WorkflowTasks string    `gorm:"column:workflow_tasks;type:jsonb;not null;default:'[]'"`
	StatusHistory string    `gorm:"column:status_history;type:jsonb;not null;default:'[]'"`
	Completed     bool      `gorm:"column:completed;not null;default:false"`
	Trash         bool      `gorm:"column:trash;not null;default:false"`
	CreatedAt     time.Time `gorm:"column:created_at;not null"`
	UpdatedAt     time.Time `gorm:"column:updated_at;not null"`
}

func (ShipmentWorkflowModel) TableName() string {
	return "shipment_workflows"
}

// ShipmentFileModel represents the shipment_files table
type ShipmentFileModel struct {
	ID              int64     `gorm:"column:id;primaryKey;autoIncrement"`
	ShipmentID      string    `gorm:"column:shipment_id;not null;index"`
	CompanyID       string    `gorm:"column:company_id;not null"`
	FileName        string    `gorm:"column:file_name;not null"`
	FileLocation    string    `gorm:"column:file_location;not null"`
	FileTags        string    `gorm:"column:file_tags;type:jsonb;not null;default:'[]'"`
	FileDescription *string   `gorm:"column:file_description"`
	FileSizeKB      float64   `gorm:"column:file_size_kb"`
	Visibility      bool      `gorm:"column:visibility;not null;default:true"`
	NotificationSent bool     `gorm:"column:notification_sent;not null;default:false"`
	UploadedByUID   string    `gorm:"column:uploaded_by_uid"`
	UploadedByEmail string    `gorm:"column:uploaded_by_email"`
	Trash           bool      `gorm:"column:trash;not null;default:false"`
	CreatedAt       time.Time `gorm:"column:created_at;not null"`
	UpdatedAt       time.Time `gorm:"column:updated_at;not null"`
}

func (ShipmentFileModel) TableName() string {
	return "shipment_files"
}

// CompanyModel represents the companies table
type CompanyModel struct {
	ID                string    `gorm:"column:id;primaryKey"`
	Name              string    `gorm:"column:name;not null"`
	ShortName         string    `gorm:"column:short_name"`
	AccountType       string    `gorm:"column:account_type;not null;default:'AFC'"`
	Email             string    `gorm:"column:email"`
	Phone             string    `gorm:"column:phone"`
	Address           *string   `gorm:"column:address;type:jsonb"`
	XeroContactID     string    `gorm:"column:xero_contact_id"`
	Approved          bool      `gorm:"column:approved;not null;default:false"`
	HasPlatformAccess bool      `gorm:"column:has_platform_access;not null;default:false"`
	Trash             bool      `gorm:"column:trash;not null;default:false"`
	CreatedAt         time.Time `gorm:"column:created_at;not null"`
	UpdatedAt         time.Time `gorm:"column:updated_at;not null"`
}

func (CompanyModel) TableName() string {
	return "companies"
}

// PortModel represents the ports catalog
type PortModel struct {
	UNCode       string    `gorm:"column:un_code;primaryKey"`
	Name         string    `gorm:"column:name;not null"`
	Country      string    `gorm:"column:country"`
	CountryCode  string    `gorm:"column:country_code"`
	PortType     string    `gorm:"column:port_type;not null;default:'SEA'"`
	HasTerminals bool      `gorm:"column:has_terminals;not null;default:false"`
	Terminals    string    `gorm:"column:terminals;type:jsonb;not null;default:'[]'"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
}

func (PortModel) TableName() string {
	return "ports"
}

// FileTagModel represents the file_tags table
type FileTagModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Label     string    `gorm:"column:label;not null"`
	Color     string    `gorm:"column:color"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (FileTagModel) TableName() string {
	return "file_tags"
}

// SystemLogModel represents the system_logs audit table
type SystemLogModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Action    string    `gorm:"column:action;not null"`
	EntityID  string    `gorm:"column:entity_id;index"`
	UID       string    `gorm:"column:uid"`
	Email     string    `gorm:"column:email"`
	Metadata  *string   `gorm:"column:metadata;type:jsonb"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (SystemLogModel) TableName() string {
	return "system_logs"
}

// UserAccountModel represents the user_accounts table used to augment
// verified token claims.
type UserAccountModel struct {
	UID         string    `gorm:"column:uid;primaryKey"`
	Email       string    `gorm:"column:email;not null;index"`
	AccountType string    `gorm:"column:account_type;not null;default:'AFC'"`
	Role        string    `gorm:"column:role"`
	CompanyID   string    `gorm:"column:company_id"`
	Name        string    `gorm:"column:name"`
	ValidAccess bool      `gorm:"column:valid_access;not null;default:true"`
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null"`
}

func (UserAccountModel) TableName() string {
	return "user_accounts"
}

// LegacyEntityModel represents the legacy_entities interop table read by
// the v1 migrator. Kind and key mirror the source system's entity model.
type LegacyEntityModel struct {
	Kind       string    `gorm:"column:kind;primaryKey"`
	Key        string    `gorm:"column:key;primaryKey"`
	Data       string    `gorm:"column:data;type:jsonb;not null"`
	Superseded bool      `gorm:"column:superseded;not null;default:false"`
	CreatedAt  time.Time `gorm:"column:created_at;not null"`
	UpdatedAt  time.Time `gorm:"column:updated_at;not null"`
}

func (LegacyEntityModel) TableName() string {
	return "legacy_entities"
}
