package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// Change request types.
const (
	RequestTypeTempResidence  = "temp_residence" // tạm trú
	RequestTypeTempAbsence    = "temp_absence"   // tạm vắng
	RequestTypeAddPerson      = "add_person"
	RequestTypeRemovePerson   = "remove_person"
	RequestTypeSplitHousehold = "split_household"
)

// Change request statuses. pending is the only non-terminal state.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// ValidRequestTypes lists every accepted request type.
var ValidRequestTypes = []string{
	RequestTypeTempResidence, RequestTypeTempAbsence, RequestTypeAddPerson,
	RequestTypeRemovePerson, RequestTypeSplitHousehold,
}

// ChangeRequest is a citizen-originated change proposal. The payload is
// type-specific JSON, decoded into one of the payload structs below before
// any lifecycle logic touches it.
type ChangeRequest struct {
	BaseModel
	RequesterID  uint       `gorm:"not null;index" json:"requester_id"`
	Type         string     `gorm:"type:varchar(30);not null;index" json:"type"`
	HouseholdID  *uint      `gorm:"index" json:"household_id,omitempty"`
	PersonID     *uint      `json:"person_id,omitempty"`
	Payload      string     `gorm:"type:text" json:"payload"`
	Status       string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	RejectReason string     `gorm:"type:text" json:"reject_reason,omitempty"`
	ReviewedBy   *uint      `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`

	Requester *User      `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Household *Household `gorm:"foreignKey:HouseholdID" json:"household,omitempty"`
}

// NewPersonPayload carries the minimal demographics needed to register a new
// nhân khẩu from a request.
type NewPersonPayload struct {
	FullName     string `json:"hoTen"`
	DateOfBirth  string `json:"ngaySinh"` // YYYY-MM-DD
	Gender       string `json:"gioiTinh"`
	CCCD         string `json:"cccd,omitempty"`
	Relationship string `json:"quanHeVoiChuHo"`
}

// TempResidencyPayload is the payload of temp_residence and temp_absence
// requests (tạm trú / tạm vắng).
type TempResidencyPayload struct {
	FromDate  string            `json:"tuNgay"`            // YYYY-MM-DD, required
	ToDate    string            `json:"denNgay,omitempty"` // open-ended when empty
	Address   string            `json:"diaChi"`
	Reason    string            `json:"lyDo"`
	NewPerson *NewPersonPayload `json:"nhanKhauMoi,omitempty"` // temp_residence may register a new person
}

// AddPersonPayload is the payload of add_person requests.
type AddPersonPayload struct {
	Person NewPersonPayload `json:"nhanKhau"`
}

// RemovePersonPayload is the payload of remove_person requests.
type RemovePersonPayload struct {
	PersonID  uint   `json:"nhanKhauId"`
	Reason    string `json:"lyDo"`
	NewStatus string `json:"trangThaiMoi,omitempty"` // moved_out (default) or deceased
}

// SplitHouseholdPayload is the payload of split_household requests. The
// listed members move into a new household at the given address; the first
// member becomes its head.
type SplitHouseholdPayload struct {
	NewCode    string `json:"soHoKhauMoi"`
	NewAddress string `json:"diaChiMoi"`
	MemberIDs  []uint `json:"thanhVien"`
}

// DecodePayload decodes the stored payload into the struct matching the
// request type.
func (r *ChangeRequest) DecodePayload() (interface{}, error) {
	switch r.Type {
	case RequestTypeTempResidence, RequestTypeTempAbsence:
		var p TempResidencyPayload
		if err := json.Unmarshal([]byte(r.Payload), &p); err != nil {
			return nil, err
		}
		return &p, nil
	case RequestTypeAddPerson:
		var p AddPersonPayload
		if err := json.Unmarshal([]byte(r.Payload), &p); err != nil {
			return nil, err
		}
		return &p, nil
	case RequestTypeRemovePerson:
		var p RemovePersonPayload
		if err := json.Unmarshal([]byte(r.Payload), &p); err != nil {
			return nil, err
		}
		return &p, nil
	case RequestTypeSplitHousehold:
		var p SplitHouseholdPayload
		if err := json.Unmarshal([]byte(r.Payload), &p); err != nil {
			return nil, err
		}
		return &p, nil
	default:
		return nil, fmt.Errorf("unknown request type %q", r.Type)
	}
}
