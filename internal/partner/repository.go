package partner

import "gorm.io/gorm"

type Repository interface {
	Salvar(db *gorm.DB, p *Partner) error
	ListarTodos(db *gorm.DB) ([]Partner, error)
	BuscarPorID(db *gorm.DB, id string) (*Partner, error)
	Atualizar(db *gorm.DB, p *Partner) error
	Deletar(db *gorm.DB, id string) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, p *Partner) error {
	return db.Create(p).Error
}

func (r *repositoryImpl) ListarTodos(db *gorm.DB) ([]Partner, error) {
	var list []Partner
	err := db.Order("name").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id string) (*Partner, error) {
	var p Partner
	err := db.First(&p, "id = ?", id).Error
	return &p, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, p *Partner) error {
	return db.Save(p).Error
}

func (r *repositoryImpl) Deletar(db *gorm.DB, id string) error {
	return db.Delete(&Partner{}, "id = ?", id).Error
}
