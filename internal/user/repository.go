package user

import "gorm.io/gorm"

type Repository interface {
	Salvar(db *gorm.DB, u *User) error
	ListarTodos(db *gorm.DB) ([]User, error)
	ListarPorEmpresa(db *gorm.DB, companyID string) ([]User, error)
	BuscarPorID(db *gorm.DB, id string) (*User, error)
	BuscarPorEmail(db *gorm.DB, email string) (*User, error)
	Atualizar(db *gorm.DB, u *User) error
	Deletar(db *gorm.DB, id string) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, u *User) error {
	return db.Create(u).Error
}

func (r *repositoryImpl) ListarTodos(db *gorm.DB) ([]User, error) {
	var list []User
	err := db.Order("name").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListarPorEmpresa(db *gorm.DB, companyID string) ([]User, error) {
	var list []User
	err := db.Where("company_id = ?", companyID).Order("name").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id string) (*User, error) {
	var u User
	err := db.First(&u, "id = ?", id).Error
	return &u, err
}

func (r *repositoryImpl) BuscarPorEmail(db *gorm.DB, email string) (*User, error) {
	var u User
	err := db.First(&u, "email = ?", email).Error
	return &u, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, u *User) error {
	return db.Save(u).Error
}

func (r *repositoryImpl) Deletar(db *gorm.DB, id string) error {
	return db.Delete(&User{}, "id = ?", id).Error
}
