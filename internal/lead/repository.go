package lead

import (
	"strings"

	"github.com/HeliosEnergia/api-backoffice/internal/pagination"
	"gorm.io/gorm"
)

// Filtros aceitos na listagem de leads.
type Filtro struct {
	Status    string
	Source    string
	OwnerType string
	CompanyID string
	Query     string
}

type Repository interface {
	Salvar(db *gorm.DB, l *Lead) error
	Listar(db *gorm.DB, f Filtro, p pagination.Params) ([]Lead, int64, error)
	BuscarPorID(db *gorm.DB, id string) (*Lead, error)
	BuscarPorEmailOuCNPJ(db *gorm.DB, email, cnpj string) (*Lead, error)
	Atualizar(db *gorm.DB, l *Lead) error
	Deletar(db *gorm.DB, id string) error

	SalvarNota(db *gorm.DB, n *LeadNote) error
	ListarNotas(db *gorm.DB, leadID string) ([]LeadNote, error)

	SalvarProposta(db *gorm.DB, p *LeadProposal) error
	ListarPropostas(db *gorm.DB, leadID string) ([]LeadProposal, error)
	BuscarProposta(db *gorm.DB, leadID, proposalID string) (*LeadProposal, error)
	AtualizarProposta(db *gorm.DB, p *LeadProposal) error
}

type repositoryImpl struct{}

func NewRepository() Repository {
	return &repositoryImpl{}
}

func (r *repositoryImpl) Salvar(db *gorm.DB, l *Lead) error {
	return db.Create(l).Error
}

func aplicarFiltro(db *gorm.DB, f Filtro) *gorm.DB {
	q := db.Model(&Lead{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	if f.OwnerType != "" {
		q = q.Where("owner_type = ?", f.OwnerType)
	}
	if f.CompanyID != "" {
		q = q.Where("company_id = ?", f.CompanyID)
	}
	if f.Query != "" {
		// lower() em vez de ILIKE para funcionar igual no Postgres e no
		// sqlite dos testes
		like := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where("lower(name) LIKE ? OR lower(email) LIKE ?", like, like)
	}
	return q
}

func (r *repositoryImpl) Listar(db *gorm.DB, f Filtro, p pagination.Params) ([]Lead, int64, error) {
	var total int64
	if err := aplicarFiltro(db, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var list []Lead
	err := aplicarFiltro(db, f).
		Scopes(p.Scope()).
		Order("created_at DESC").
		Find(&list).Error
	return list, total, err
}

func (r *repositoryImpl) BuscarPorID(db *gorm.DB, id string) (*Lead, error) {
	var l Lead
	err := db.First(&l, "id = ?", id).Error
	return &l, err
}

func (r *repositoryImpl) BuscarPorEmailOuCNPJ(db *gorm.DB, email, cnpj string) (*Lead, error) {
	var l Lead
	q := db.Where("email = ?", email)
	if cnpj != "" {
		q = db.Where("email = ? OR cnpj = ?", email, cnpj)
	}
	err := q.First(&l).Error
	return &l, err
}

func (r *repositoryImpl) Atualizar(db *gorm.DB, l *Lead) error {
	return db.Save(l).Error
}

func (r *repositoryImpl) Deletar(db *gorm.DB, id string) error {
	return db.Delete(&Lead{}, "id = ?", id).Error
}

func (r *repositoryImpl) SalvarNota(db *gorm.DB, n *LeadNote) error {
	return db.Create(n).Error
}

func (r *repositoryImpl) ListarNotas(db *gorm.DB, leadID string) ([]LeadNote, error) {
	var notes []LeadNote
	err := db.Where("lead_id = ?", leadID).Order("created_at").Find(&notes).Error
	return notes, err
}

func (r *repositoryImpl) SalvarProposta(db *gorm.DB, p *LeadProposal) error {
	return db.Create(p).Error
}

func (r *repositoryImpl) ListarPropostas(db *gorm.DB, leadID string) ([]LeadProposal, error) {
	var props []LeadProposal
	err := db.Where("lead_id = ?", leadID).Order("created_at DESC").Find(&props).Error
	return props, err
}

func (r *repositoryImpl) BuscarProposta(db *gorm.DB, leadID, proposalID string) (*LeadProposal, error) {
	var p LeadProposal
	err := db.First(&p, "id = ? AND lead_id = ?", proposalID, leadID).Error
	return &p, err
}

func (r *repositoryImpl) AtualizarProposta(db *gorm.DB, p *LeadProposal) error {
	return db.Save(p).Error
}
