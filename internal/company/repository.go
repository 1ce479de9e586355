package company

import "gorm.io/gorm"

type Repository interface {
	Salvar(db *gorm.DB, c *Company) error
	ListarTodas(db *gorm.DB) ([]Company, error)
	BuscarPorID(db *gorm.DB, id string) (*Company, error)
	BuscarPorCode(db *gorm.DB, code string) (*Company, error)
	Atualizar(db *gorm.DB, c *Company) error
	Deletar(db *gorm.DB, id string) error
	TemDependentes(db *gorm.DB, id string) (bool, error)
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, c *Company) error {
	return db.Create(c).Error
}

func (r *repositoryImpl) ListarTodas(db *gorm.DB) ([]Company, error) {
	var list []Company
	err := db.Order("name").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id string) (*Company, error) {
	var c Company
	err := db.First(&c, "id = ?", id).Error
	return &c, err
}

func (r *repositoryImpl) BuscarPorCode(db *gorm.DB, code string) (*Company, error) {
	var c Company
	err := db.First(&c, "code = ?", code).Error
	return &c, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, c *Company) error {
	return db.Save(c).Error
}

// Deletar remove fisicamente: empresa é a única entidade com hard delete.
func (r *repositoryImpl) Deletar(db *gorm.DB, id string) error {
	return db.Unscoped().Delete(&Company{}, "id = ?", id).Error
}

// TemDependentes confere as tabelas com FK RESTRICT antes do hard delete.
func (r *repositoryImpl) TemDependentes(db *gorm.DB, id string) (bool, error) {
	for _, table := range []string{"users", "concessionaires", "plants", "cooperatives", "leads"} {
		var n int64
		if err := db.Table(table).Where("company_id = ?", id).Count(&n).Error; err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}
