package repository

import (
	"citamed/internal/domain"
	"citamed/internal/models"

	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(u *models.User) error {
	return r.db.Create(u).Error
}

func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var u models.User
	err := r.db.First(&u, id).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var u models.User
	err := r.db.Where("email = ?", email).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetDoctor returns the user only when it is an active doctor.
func (r *UserRepository) GetDoctor(id uint) (*models.User, error) {
	var u models.User
	err := r.db.Where("id = ? AND role = ? AND active = ?", id, domain.RoleDoctor, true).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListDoctors returns active doctors ordered by name.
func (r *UserRepository) ListDoctors() ([]models.User, error) {
	var doctors []models.User
	err := r.db.Where("role = ? AND active = ?", domain.RoleDoctor, true).
		Order("last_name ASC, first_name ASC").
		Find(&doctors).Error
	return doctors, err
}
