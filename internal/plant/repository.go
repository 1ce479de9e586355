package plant

import "gorm.io/gorm"

type Repository interface {
	Salvar(db *gorm.DB, p *Plant) error
	ListarTodas(db *gorm.DB) ([]Plant, error)
	ListarPorEmpresa(db *gorm.DB, companyID string) ([]Plant, error)
	BuscarPorID(db *gorm.DB, id string) (*Plant, error)
	Atualizar(db *gorm.DB, p *Plant) error
	Deletar(db *gorm.DB, id string) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, p *Plant) error {
	return db.Create(p).Error
}

func (r *repositoryImpl) ListarTodas(db *gorm.DB) ([]Plant, error) {
	var list []Plant
	err := db.Order("name").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListarPorEmpresa(db *gorm.DB, companyID string) ([]Plant, error) {
	var list []Plant
	err := db.Where("company_id = ?", companyID).Order("name").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id string) (*Plant, error) {
	var p Plant
	err := db.First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, p *Plant) error {
	return db.Save(p).Error
}

func (r *repositoryImpl) Deletar(db *gorm.DB, id string) error {
	return db.Delete(&Plant{}, "id = ?", id).Error
}
