package concessionaire

import "gorm.io/gorm"

type Repository interface {
	Salvar(db *gorm.DB, c *Concessionaire) error
	ListarTodas(db *gorm.DB) ([]Concessionaire, error)
	ListarPorEmpresa(db *gorm.DB, companyID string) ([]Concessionaire, error)
	BuscarPorID(db *gorm.DB, id string) (*Concessionaire, error)
	Atualizar(db *gorm.DB, c *Concessionaire) error
	Deletar(db *gorm.DB, id string) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, c *Concessionaire) error {
	return db.Create(c).Error
}

func (r *repositoryImpl) ListarTodas(db *gorm.DB) ([]Concessionaire, error) {
	var list []Concessionaire
	err := db.Order("name").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListarPorEmpresa(db *gorm.DB, companyID string) ([]Concessionaire, error) {
	var list []Concessionaire
	err := db.Where("company_id = ?", companyID).Order("name").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id string) (*Concessionaire, error) {
	var c Concessionaire
	err := db.First(&c, "id = ?", id).Error
	return &c, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, c *Concessionaire) error {
	return db.Save(c).Error
}

func (r *repositoryImpl) Deletar(db *gorm.DB, id string) error {
	return db.Delete(&Concessionaire{}, "id = ?", id).Error
}
