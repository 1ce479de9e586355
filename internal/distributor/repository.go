package distributor

import "gorm.io/gorm"

type Repository interface {
	Salvar(db *gorm.DB, d *Distributor) error
	ListarTodos(db *gorm.DB) ([]Distributor, error)
	ListarPorUF(db *gorm.DB, uf string) ([]Distributor, error)
	BuscarPorID(db *gorm.DB, id string) (*Distributor, error)
	Atualizar(db *gorm.DB, d *Distributor) error
	Referenciado(db *gorm.DB, id string) (bool, error)
	Deletar(db *gorm.DB, id string) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, d *Distributor) error {
	return db.Create(d).Error
}

func (r *repositoryImpl) ListarTodos(db *gorm.DB) ([]Distributor, error) {
	var list []Distributor
	err := db.Order("name").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) ListarPorUF(db *gorm.DB, uf string) ([]Distributor, error) {
	var list []Distributor
	err := db.Where("state = ?", uf).Order("name").Find(&list).Error
	return list, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id string) (*Distributor, error) {
	var d Distributor
	err := db.First(&d, "id = ?", id).Error
	return &d, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, d *Distributor) error {
	return db.Save(d).Error
}

// Referenciado confere concessionárias e leads antes do delete (RESTRICT).
func (r *repositoryImpl) Referenciado(db *gorm.DB, id string) (bool, error) {
	for _, table := range []string{"concessionaires", "leads"} {
		var n int64
		if err := db.Table(table).Where("distributor_id = ?", id).Count(&n).Error; err != nil {
			return false, err
		}
		if n > 0 {
			return true, nil
		}
	}
	return false, nil
}

func (r *repositoryImpl) Deletar(db *gorm.DB, id string) error {
	return db.Delete(&Distributor{}, "id = ?", id).Error
}
