package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/config"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/utils"
)

// Minimum length of a rejection reason.
const minRejectReasonLen = 5

// RequestFilter is the typed filter object for request listing.
type RequestFilter struct {
	Type        string
	Status      string
	RequesterID uint
	Keyword     string
	Page        int
	PageSize    int
}

// CreateRequestInput carries a new change request before payload decoding.
type CreateRequestInput struct {
	Type        string          `json:"type"`
	HouseholdID uint            `json:"household_id"`
	PersonID    *uint           `json:"person_id,omitempty"`
	Payload     json.RawMessage `json:"payload"`
}

// PrecheckWarning is a reviewer-facing consistency warning. Any warning
// blocks approval; the reviewer must reject with an explanation instead.
type PrecheckWarning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// InterfaceRequestService defines the change request service interface
type InterfaceRequestService interface {
	CreateRequest(requester *models.User, input CreateRequestInput) (*models.ChangeRequest, error)
	CreateRequestWithAttachments(requester *models.User, input CreateRequestInput, attachments []models.Attachment) (*models.ChangeRequest, error)
	GetRequestByID(actor *models.User, id uint) (*models.ChangeRequest, error)
	ListRequests(filter RequestFilter) ([]models.ChangeRequest, int64, error)
	Precheck(id uint) ([]PrecheckWarning, error)
	ApproveRequest(reviewer *models.User, id uint) (*models.ChangeRequest, error)
	RejectRequest(reviewer *models.User, id uint, reason string) (*models.ChangeRequest, error)
}

// RequestService manages the citizen change request lifecycle:
// pending → approved (domain mutation applied transactionally) or
// pending → rejected (reason recorded, nothing mutated).
type RequestService struct {
	DB       *gorm.DB
	Config   *config.Config
	identity InterfaceIdentityService
}

// NewRequestService creates a new change request service.
func NewRequestService(db *gorm.DB, cfg *config.Config, identity InterfaceIdentityService) InterfaceRequestService {
	return &RequestService{DB: db, Config: cfg, identity: identity}
}

// CreateRequest validates a typed payload and records a pending request.
// The requester must be the linked, registered chủ hộ of the target
// household.
func (s *RequestService) CreateRequest(requester *models.User, input CreateRequestInput) (*models.ChangeRequest, error) {
	return s.CreateRequestWithAttachments(requester, input, nil)
}

// CreateRequestWithAttachments records a pending request together with its
// uploaded attachment descriptors in one transaction. Files are already on
// disk when this runs; the caller removes them if the transaction fails.
func (s *RequestService) CreateRequestWithAttachments(requester *models.User, input CreateRequestInput, attachments []models.Attachment) (*models.ChangeRequest, error) {
	if !contains(models.ValidRequestTypes, input.Type) {
		return nil, code.NewWithMessage(code.ValidationError, "Loại yêu cầu không hợp lệ")
	}
	if input.HouseholdID == 0 {
		return nil, code.NewWithMessage(code.ValidationError, "Yêu cầu phải gắn với một hộ khẩu")
	}

	if err := s.requireHeadOfHousehold(requester, input.HouseholdID); err != nil {
		return nil, err
	}

	request := &models.ChangeRequest{
		RequesterID: requester.ID,
		Type:        input.Type,
		HouseholdID: &input.HouseholdID,
		PersonID:    input.PersonID,
		Payload:     string(input.Payload),
		Status:      models.RequestStatusPending,
	}
	if err := s.validatePayload(request); err != nil {
		return nil, err
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(request).Error; err != nil {
			return err
		}
		for i := range attachments {
			attachments[i].RequestID = request.ID
			if err := tx.Create(&attachments[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return request, nil
}

// GetRequestByID loads one request. Citizens may only read their own.
func (s *RequestService) GetRequestByID(actor *models.User, id uint) (*models.ChangeRequest, error) {
	var request models.ChangeRequest
	if err := s.DB.Preload("Household").First(&request, id).Error; err != nil {
		return nil, err
	}
	if actor.Role == models.RoleCitizen && request.RequesterID != actor.ID {
		return nil, code.New(code.Forbidden)
	}
	return &request, nil
}

// ListRequests lists requests matching the filter. The caller scopes
// citizens to their own requests through RequesterID.
func (s *RequestService) ListRequests(filter RequestFilter) ([]models.ChangeRequest, int64, error) {
	query := s.DB.Model(&models.ChangeRequest{})

	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RequesterID != 0 {
		query = query.Where("requester_id = ?", filter.RequesterID)
	}
	if filter.Keyword != "" {
		pattern := "%" + filter.Keyword + "%"
		query = query.Where("payload LIKE ? OR reject_reason LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}

	var requests []models.ChangeRequest
	if err := query.Preload("Household").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, 0, err
	}
	return requests, total, nil
}

// Precheck computes the consistency warnings a reviewer must see before
// approval: a CCCD already present in the target household, or a second
// chủ hộ being introduced.
func (s *RequestService) Precheck(id uint) ([]PrecheckWarning, error) {
	var request models.ChangeRequest
	if err := s.DB.First(&request, id).Error; err != nil {
		return nil, err
	}
	return s.precheck(&request)
}

func (s *RequestService) precheck(request *models.ChangeRequest) ([]PrecheckWarning, error) {
	newPerson, err := incomingPerson(request)
	if err != nil {
		return nil, code.NewWithMessage(code.ValidationError, "Không đọc được nội dung yêu cầu")
	}
	if newPerson == nil || request.HouseholdID == nil {
		return nil, nil
	}

	var warnings []PrecheckWarning

	if cccd := utils.NormalizeCCCD(newPerson.CCCD); cccd != "" {
		var count int64
		if err := s.DB.Model(&models.Person{}).
			Where("household_id = ? AND cccd = ?", *request.HouseholdID, cccd).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			warnings = append(warnings, PrecheckWarning{
				Code:    code.DuplicateCCCD,
				Message: fmt.Sprintf("Số CCCD %s đã có trong hộ khẩu", cccd),
			})
		}
	}

	if newPerson.Relationship == models.RelationshipHead {
		var heads int64
		if err := s.DB.Model(&models.Person{}).
			Where("household_id = ? AND relationship_to_head = ?", *request.HouseholdID, models.RelationshipHead).
			Count(&heads).Error; err != nil {
			return nil, err
		}
		if heads > 0 {
			warnings = append(warnings, PrecheckWarning{
				Code:    code.DuplicateChuHo,
				Message: "Hộ khẩu đã có chủ hộ, không thể thêm chủ hộ thứ hai",
			})
		}
	}
	return warnings, nil
}

// ApproveRequest applies the request's domain mutation and marks it
// approved, in one transaction. Outstanding precheck warnings block
// approval: the reviewer has to reject with an explanation instead of
// letting inconsistent state through.
func (s *RequestService) ApproveRequest(reviewer *models.User, id uint) (*models.ChangeRequest, error) {
	var request models.ChangeRequest
	if err := s.DB.First(&request, id).Error; err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, code.NewWithMessage(code.ValidationError, "Yêu cầu đã được xử lý")
	}

	warnings, err := s.precheck(&request)
	if err != nil {
		return nil, err
	}
	if len(warnings) > 0 {
		messages := make([]string, len(warnings))
		for i, w := range warnings {
			messages[i] = w.Message
		}
		return nil, code.NewWithMessage(warnings[0].Code,
			"Không thể phê duyệt khi còn cảnh báo: "+strings.Join(messages, "; "))
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.applyMutation(tx, &request); err != nil {
			return err
		}

		now := time.Now()
		if err := tx.Model(&request).Updates(map[string]interface{}{
			"status":      models.RequestStatusApproved,
			"reviewed_by": reviewer.ID,
			"reviewed_at": now,
		}).Error; err != nil {
			return err
		}

		return tx.Create(&models.AuditLog{
			ActorID:    reviewer.ID,
			EntityType: models.AuditEntityRequest,
			EntityID:   request.ID,
			Action:     "approve",
			Detail:     "request type " + request.Type,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// RejectRequest marks a pending request rejected. The reason is mandatory
// and must carry at least a few characters of explanation; no domain state
// is touched.
func (s *RequestService) RejectRequest(reviewer *models.User, id uint, reason string) (*models.ChangeRequest, error) {
	if len(strings.TrimSpace(reason)) < minRejectReasonLen {
		return nil, code.NewWithMessage(code.ValidationError,
			fmt.Sprintf("Lý do từ chối phải có ít nhất %d ký tự", minRejectReasonLen))
	}

	var request models.ChangeRequest
	if err := s.DB.First(&request, id).Error; err != nil {
		return nil, err
	}
	if request.Status != models.RequestStatusPending {
		return nil, code.NewWithMessage(code.ValidationError, "Yêu cầu đã được xử lý")
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&request).Updates(map[string]interface{}{
			"status":        models.RequestStatusRejected,
			"reject_reason": strings.TrimSpace(reason),
			"reviewed_by":   reviewer.ID,
			"reviewed_at":   now,
		}).Error; err != nil {
			return err
		}
		return tx.Create(&models.AuditLog{
			ActorID:    reviewer.ID,
			EntityType: models.AuditEntityRequest,
			EntityID:   request.ID,
			Action:     "reject",
			Detail:     "request type " + request.Type,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return &request, nil
}

// requireHeadOfHousehold verifies that the requester's linked person is the
// registered chủ hộ of the target household.
func (s *RequestService) requireHeadOfHousehold(requester *models.User, householdID uint) error {
	link, err := s.identity.ResolvePerson(requester)
	if err != nil {
		return err
	}
	if !link.Linked {
		return code.New(code.NotLinked)
	}
	if link.Person.HouseholdID != householdID || !link.Person.IsHead() {
		return code.NewWithMessage(code.Forbidden, "Chỉ chủ hộ của hộ khẩu mới được gửi yêu cầu này")
	}
	return nil
}

// validatePayload decodes and validates the type-specific payload fields.
func (s *RequestService) validatePayload(request *models.ChangeRequest) error {
	decoded, err := request.DecodePayload()
	if err != nil {
		return code.NewWithMessage(code.ValidationError, "Nội dung yêu cầu không hợp lệ")
	}

	switch payload := decoded.(type) {
	case *models.TempResidencyPayload:
		if payload.FromDate == "" || payload.Address == "" || payload.Reason == "" {
			return code.NewWithMessage(code.ValidationError, "Yêu cầu tạm trú/tạm vắng cần từ ngày, địa chỉ và lý do")
		}
		if _, err := ParseDate(payload.FromDate); err != nil {
			return code.NewWithMessage(code.ValidationError, "Từ ngày phải có dạng YYYY-MM-DD")
		}
		if payload.ToDate != "" {
			if _, err := ParseDate(payload.ToDate); err != nil {
				return code.NewWithMessage(code.ValidationError, "Đến ngày phải có dạng YYYY-MM-DD")
			}
		}
		if payload.NewPerson != nil {
			return validateNewPerson(payload.NewPerson)
		}
		if request.Type == models.RequestTypeTempAbsence && request.PersonID == nil {
			return code.NewWithMessage(code.ValidationError, "Yêu cầu tạm vắng cần chỉ rõ nhân khẩu")
		}
		return nil
	case *models.AddPersonPayload:
		return validateNewPerson(&payload.Person)
	case *models.RemovePersonPayload:
		if payload.PersonID == 0 || payload.Reason == "" {
			return code.NewWithMessage(code.ValidationError, "Yêu cầu xóa nhân khẩu cần nhân khẩu và lý do")
		}
		if payload.NewStatus != "" &&
			payload.NewStatus != models.StatusMovedOut && payload.NewStatus != models.StatusDeceased {
			return code.NewWithMessage(code.ValidationError, "Trạng thái mới không hợp lệ")
		}
		return nil
	case *models.SplitHouseholdPayload:
		if payload.NewCode == "" || payload.NewAddress == "" || len(payload.MemberIDs) == 0 {
			return code.NewWithMessage(code.ValidationError, "Yêu cầu tách hộ cần số hộ khẩu mới, địa chỉ và danh sách thành viên")
		}
		return nil
	default:
		return code.NewWithMessage(code.ValidationError, "Loại yêu cầu không hợp lệ")
	}
}

func validateNewPerson(p *models.NewPersonPayload) error {
	if p.FullName == "" || p.DateOfBirth == "" || p.Gender == "" {
		return code.NewWithMessage(code.ValidationError, "Nhân khẩu mới cần họ tên, ngày sinh và giới tính")
	}
	if _, err := ParseDate(p.DateOfBirth); err != nil {
		return code.NewWithMessage(code.ValidationError, "Ngày sinh phải có dạng YYYY-MM-DD")
	}
	if p.CCCD != "" && !utils.IsValidCCCD(p.CCCD) {
		return code.NewWithMessage(code.ValidationError, "Số CCCD/CMND phải gồm 9-12 chữ số")
	}
	if p.Relationship != "" && !contains(models.ValidRelationships, p.Relationship) {
		return code.NewWithMessage(code.ValidationError, "Quan hệ với chủ hộ không hợp lệ")
	}
	return nil
}

// incomingPerson extracts the new-person block from a request payload, when
// the request introduces one.
func incomingPerson(request *models.ChangeRequest) (*models.NewPersonPayload, error) {
	decoded, err := request.DecodePayload()
	if err != nil {
		return nil, err
	}
	switch payload := decoded.(type) {
	case *models.TempResidencyPayload:
		return payload.NewPerson, nil
	case *models.AddPersonPayload:
		return &payload.Person, nil
	default:
		return nil, nil
	}
}

// applyMutation performs the per-type domain change inside the approval
// transaction.
func (s *RequestService) applyMutation(tx *gorm.DB, request *models.ChangeRequest) error {
	decoded, err := request.DecodePayload()
	if err != nil {
		return code.NewWithMessage(code.ValidationError, "Nội dung yêu cầu không hợp lệ")
	}

	switch payload := decoded.(type) {
	case *models.TempResidencyPayload:
		return s.applyTempResidency(tx, request, payload)
	case *models.AddPersonPayload:
		_, err := insertPayloadPerson(tx, *request.HouseholdID, &payload.Person, models.StatusPermanent)
		return err
	case *models.RemovePersonPayload:
		newStatus := payload.NewStatus
		if newStatus == "" {
			newStatus = models.StatusMovedOut
		}
		result := tx.Model(&models.Person{}).
			Where("id = ? AND household_id = ?", payload.PersonID, *request.HouseholdID).
			Update("status", newStatus)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return code.NewWithMessage(code.NotFound, "Nhân khẩu không thuộc hộ khẩu này")
		}
		return nil
	case *models.SplitHouseholdPayload:
		return s.applySplitHousehold(tx, request, payload)
	default:
		return code.NewWithMessage(code.ValidationError, "Loại yêu cầu không hợp lệ")
	}
}

func (s *RequestService) applyTempResidency(tx *gorm.DB, request *models.ChangeRequest, payload *models.TempResidencyPayload) error {
	residencyType := models.ResidencyTempResidence
	personStatus := models.StatusTempResidence
	if request.Type == models.RequestTypeTempAbsence {
		residencyType = models.ResidencyTempAbsence
		personStatus = models.StatusTempAbsence
	}

	var personID uint
	if payload.NewPerson != nil {
		id, err := insertPayloadPerson(tx, *request.HouseholdID, payload.NewPerson, personStatus)
		if err != nil {
			return err
		}
		personID = id
	} else if request.PersonID != nil {
		var person models.Person
		if err := tx.Where("id = ? AND household_id = ?", *request.PersonID, *request.HouseholdID).
			First(&person).Error; err != nil {
			return code.NewWithMessage(code.NotFound, "Nhân khẩu không thuộc hộ khẩu này")
		}
		personID = person.ID
	} else {
		return code.NewWithMessage(code.ValidationError, "Yêu cầu không chỉ rõ nhân khẩu")
	}

	fromDate, err := ParseDate(payload.FromDate)
	if err != nil {
		return code.NewWithMessage(code.ValidationError, "Từ ngày phải có dạng YYYY-MM-DD")
	}
	var toDate *time.Time
	if payload.ToDate != "" {
		parsed, err := ParseDate(payload.ToDate)
		if err != nil {
			return code.NewWithMessage(code.ValidationError, "Đến ngày phải có dạng YYYY-MM-DD")
		}
		toDate = &parsed
	}

	residency := &models.TemporaryResidency{
		PersonID:    personID,
		Type:        residencyType,
		FromDate:    fromDate,
		ToDate:      toDate,
		DestAddress: payload.Address,
		Reason:      payload.Reason,
		Status:      models.ResidencyStatusPendingReview,
		RequestID:   &request.ID,
	}
	if err := tx.Create(residency).Error; err != nil {
		return err
	}

	// Attachments submitted with the request now belong to the residency.
	return tx.Model(&models.Attachment{}).
		Where("request_id = ?", request.ID).
		Update("residency_id", residency.ID).Error
}

func (s *RequestService) applySplitHousehold(tx *gorm.DB, request *models.ChangeRequest, payload *models.SplitHouseholdPayload) error {
	var count int64
	if err := tx.Model(&models.Household{}).Where("code = ?", payload.NewCode).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return code.NewWithMessage(code.ValidationError, "Số hộ khẩu mới đã tồn tại")
	}

	newHousehold := &models.Household{
		Code:    payload.NewCode,
		Address: payload.NewAddress,
	}
	if err := tx.Create(newHousehold).Error; err != nil {
		return err
	}

	for i, memberID := range payload.MemberIDs {
		var person models.Person
		if err := tx.Where("id = ? AND household_id = ?", memberID, *request.HouseholdID).
			First(&person).Error; err != nil {
			return code.NewWithMessage(code.NotFound,
				fmt.Sprintf("Nhân khẩu %d không thuộc hộ khẩu này", memberID))
		}

		updates := map[string]interface{}{"household_id": newHousehold.ID}
		if i == 0 {
			// The first listed member heads the new household.
			updates["relationship_to_head"] = models.RelationshipHead
		} else if person.IsHead() {
			updates["relationship_to_head"] = models.RelationshipOther
		}
		if err := tx.Model(&person).Updates(updates).Error; err != nil {
			return err
		}

		if person.IsHead() {
			// The old household loses its head when the head moves out.
			if err := tx.Model(&models.Household{}).Where("id = ?", *request.HouseholdID).
				Update("head_id", nil).Error; err != nil {
				return err
			}
		}
	}

	return tx.Model(newHousehold).Update("head_id", payload.MemberIDs[0]).Error
}

// insertPayloadPerson creates a Person row from a request payload block.
func insertPayloadPerson(tx *gorm.DB, householdID uint, payload *models.NewPersonPayload, status string) (uint, error) {
	dob, err := ParseDate(payload.DateOfBirth)
	if err != nil {
		return 0, code.NewWithMessage(code.ValidationError, "Ngày sinh phải có dạng YYYY-MM-DD")
	}

	relationship := payload.Relationship
	if relationship == "" {
		relationship = models.RelationshipOther
	}

	person := &models.Person{
		HouseholdID:        householdID,
		FullName:           payload.FullName,
		DateOfBirth:        &dob,
		Gender:             payload.Gender,
		CCCD:               utils.NormalizeCCCD(payload.CCCD),
		RelationshipToHead: relationship,
		Status:             status,
	}
	if err := tx.Create(person).Error; err != nil {
		return 0, err
	}
	return person.ID, nil
}
