package cooperative

import "gorm.io/gorm"

type Repository interface {
	Salvar(db *gorm.DB, c *Cooperative) error
	ListarTodas(db *gorm.DB) ([]Cooperative, error)
	ListarPorEmpresa(db *gorm.DB, companyID string) ([]Cooperative, error)
	BuscarPorID(db *gorm.DB, id string) (*Cooperative, error)
	Atualizar(db *gorm.DB, c *Cooperative) error
	Deletar(db *gorm.DB, id string) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, c *Cooperative) error {
	return db.Create(c).Error
}

func (r *repositoryImpl) ListarTodas(db *gorm.DB) ([]Cooperative, error) {
	var list []Cooperative
	err := db.Order("name").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListarPorEmpresa(db *gorm.DB, companyID string) ([]Cooperative, error) {
	var list []Cooperative
	err := db.Where("company_id = ?", companyID).Order("name").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id string) (*Cooperative, error) {
	var c Cooperative
	err := db.First(&c, "id = ?", id).Error
	return &c, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, c *Cooperative) error {
	return db.Save(c).Error
}

func (r *repositoryImpl) Deletar(db *gorm.DB, id string) error {
	return db.Delete(&Cooperative{}, "id = ?", id).Error
}
