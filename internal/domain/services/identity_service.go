package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/domain/models"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/infrastructure/config"
	"github.com/DavidNA-VN/Resident-Management-System-sub002/utils"
)

// Guidance shown to citizens whose account has no linked nhân khẩu yet.
const unlinkedGuidance = "Tài khoản chưa được liên kết với nhân khẩu. " +
	"Vui lòng liên hệ cán bộ tổ dân phố để được liên kết hồ sơ."

// LinkResult is the outcome of resolving a citizen account to a person
// record. An unlinked account is a normal state, not an error.
type LinkResult struct {
	Linked   bool           `json:"linked"`
	Person   *models.Person `json:"personInfo,omitempty"`
	Guidance string         `json:"guidance,omitempty"`
}

// InterfaceIdentityService defines the identity resolution service interface
type InterfaceIdentityService interface {
	ResolvePerson(user *models.User) (*LinkResult, error)
	LinkAccount(actor *models.User, userID, personID uint) (*models.User, error)
}

// IdentityService links citizen accounts to person records.
type IdentityService struct {
	DB     *gorm.DB
	Config *config.Config
}

// NewIdentityService creates a new identity service.
func NewIdentityService(db *gorm.DB, cfg *config.Config) InterfaceIdentityService {
	return &IdentityService{DB: db, Config: cfg}
}

// ResolvePerson resolves the person linked to a citizen account. Resolution
// order: the stored link, then a fallback match on the normalized CCCD the
// citizen registered with. A successful fallback match is persisted so the
// next call takes the stored-link path.
func (s *IdentityService) ResolvePerson(user *models.User) (*LinkResult, error) {
	if user.PersonID != nil {
		var person models.Person
		if err := s.DB.First(&person, *user.PersonID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &LinkResult{Linked: false, Guidance: unlinkedGuidance}, nil
			}
			return nil, err
		}
		return &LinkResult{Linked: true, Person: &person}, nil
	}

	cccd := utils.NormalizeCCCD(user.Username)
	if !utils.IsValidCCCD(cccd) {
		return &LinkResult{Linked: false, Guidance: unlinkedGuidance}, nil
	}

	var person models.Person
	err := s.DB.Where("cccd = ?", cccd).First(&person).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &LinkResult{Linked: false, Guidance: unlinkedGuidance}, nil
	}
	if err != nil {
		return nil, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("person_id", person.ID).Error; err != nil {
			return err
		}
		return tx.Model(&models.Person{}).Where("id = ?", person.ID).
			Update("user_id", user.ID).Error
	})
	if err != nil {
		return nil, err
	}
	user.PersonID = &person.ID

	return &LinkResult{Linked: true, Person: &person}, nil
}

// LinkAccount explicitly links a citizen account to a person record. When
// both sides carry an identity number they must agree after normalization.
func (s *IdentityService) LinkAccount(actor *models.User, userID, personID uint) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		return nil, err
	}
	if user.Role != models.RoleCitizen {
		return nil, code.NewWithMessage(code.ValidationError, "Chỉ tài khoản công dân mới được liên kết nhân khẩu")
	}

	var person models.Person
	if err := s.DB.First(&person, personID).Error; err != nil {
		return nil, err
	}
	if person.UserID != nil && *person.UserID != userID {
		return nil, code.NewWithMessage(code.ValidationError, "Nhân khẩu đã được liên kết với tài khoản khác")
	}

	accountCCCD := utils.NormalizeCCCD(user.Username)
	if person.CCCD != "" && utils.IsValidCCCD(accountCCCD) && person.CCCD != accountCCCD {
		return nil, code.NewWithMessage(code.ValidationError, "Số CCCD của tài khoản và nhân khẩu không khớp")
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("person_id", person.ID).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Person{}).Where("id = ?", person.ID).
			Update("user_id", user.ID).Error; err != nil {
			return err
		}
		return tx.Create(&models.AuditLog{
			ActorID:    actor.ID,
			EntityType: models.AuditEntityUser,
			EntityID:   user.ID,
			Action:     "link_person",
			Detail:     "linked to person " + person.FullName,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	user.PersonID = &person.ID
	return &user, nil
}
