package models

// StepType identifies the kind of work a step asks the client to do.
type StepType string

const (
	StepTypeWelcome    StepType = "WELCOME"
	StepTypeForm       StepType = "FORM"
	StepTypeFileUpload StepType = "FILE_UPLOAD"
	StepTypeContract   StepType = "CONTRACT"
	StepTypeSchedule   StepType = "SCHEDULE"
)

// StepTypes lists every known step type in a stable order.
func StepTypes() []StepType {
	return []StepType{
		StepTypeWelcome,
		StepTypeForm,
		StepTypeFileUpload,
		StepTypeContract,
		StepTypeSchedule,
	}
}

// StepTemplate is one unit of work within a flow. Order is zero-based and
// dense within the owning flow.
type StepTemplate struct {
	ID          string      `json:"id"`
	FlowID      string      `json:"flow_id"`
	Type        StepType    `json:"type"        validate:"required"`
	Title       string      `json:"title"       validate:"required"`
	Description string      `json:"description"`
	Config      *StepConfig `json:"config"`
	Order       int         `json:"order"`
}

// FieldType enumerates the input kinds a FORM step can ask for.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeEmail    FieldType = "email"
	FieldTypePhone    FieldType = "phone"
	FieldTypeURL      FieldType = "url"
	FieldTypeSelect   FieldType = "select"
)

// FormField describes one field of a FORM step.
type FormField struct {
	ID          string        `json:"id"       validate:"required"`
	Type        FieldType     `json:"type"     validate:"required"`
	Label       string        `json:"label"    validate:"required"`
	Placeholder string        `json:"placeholder,omitempty"`
	Required    bool          `json:"required"`
	Options     []FieldOption `json:"options,omitempty"` // select fields only
}

// FieldOption is one choice of a select field.
type FieldOption struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// FormConfig configures a FORM step.
type FormConfig struct {
	Fields []FormField `json:"fields"`
}

// FileUploadConfig configures a FILE_UPLOAD step. MaxFileSizeMB bounds each
// individual file.
type FileUploadConfig struct {
	MaxFiles          int      `json:"max_files,omitempty"`
	MaxFileSizeMB     int      `json:"max_file_size_mb,omitempty"`
	AllowedExtensions []string `json:"allowed_extensions,omitempty"`
}

// ContractConfig configures a CONTRACT step.
type ContractConfig struct {
	BodyText    string `json:"body_text"`
	AcceptLabel string `json:"accept_label,omitempty"`
}

// ScheduleConfig configures a SCHEDULE step.
type ScheduleConfig struct {
	SchedulingURL string `json:"scheduling_url"`
}

// StepConfig is the tagged variant payload of a step template. Exactly the
// member matching the step's type is set; WELCOME carries no configuration.
type StepConfig struct {
	Form       *FormConfig       `json:"form,omitempty"`
	FileUpload *FileUploadConfig `json:"file_upload,omitempty"`
	Contract   *ContractConfig   `json:"contract,omitempty"`
	Schedule   *ScheduleConfig   `json:"schedule,omitempty"`
}
