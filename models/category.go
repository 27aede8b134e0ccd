package models

import (
	"sort"
	"strings"
	"time"
)

// Category, ağaç yapısındaki ürün kategorisi.
// ParentID nil ise kök kategoridir.
type Category struct {
	ID           string      `json:"id"`
	ParentID     *string     `json:"parent_id"`
	Name         string      `json:"name"`
	Slug         string      `json:"slug"`
	Description  string      `json:"description"`
	ImageURL     *string     `json:"image_url"`
	Position     int         `json:"position"`
	ProductCount int         `json:"product_count"`
	CreatedAt    time.Time   `json:"created_at"`
	Children     []*Category `json:"children,omitempty"`
}

// CategorySummary, ürünlere gömülen kategori özeti.
type CategorySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type CreateCategoryRequest struct {
	ParentID    *string `json:"parent_id"`
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Slug        string  `json:"slug" validate:"required,max=120,slug"`
	Description string  `json:"description" validate:"max=2000"`
	Position    int     `json:"position" validate:"gte=0"`
}

func (r *CreateCategoryRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = strings.TrimSpace(r.Description)
	r.Slug = deriveSlug(r.Slug, r.Name)
	if r.ParentID != nil && strings.TrimSpace(*r.ParentID) == "" {
		r.ParentID = nil
	}
	return validateStruct(r)
}

// UpdateCategoryRequest, partial update.
//
// ParentID'nin üç durumu var: alan gönderilmemiş (değişmez), null (köke taşı),
// string (yeni parent). JSON'da "gönderilmedi" ile "null"ı ayırt etmek için
// SetParent bayrağı handler'da doldurulur.
type UpdateCategoryRequest struct {
	ParentID    *string `json:"parent_id"`
	SetParent   bool    `json:"-"`
	Name        *string `json:"name" validate:"omitnil,min=1,max=100"`
	Slug        *string `json:"slug" validate:"omitnil,min=1,max=120,slug"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	Position    *int    `json:"position" validate:"omitempty,gte=0"`
}

func (r *UpdateCategoryRequest) Validate() error {
	trimPtr(r.Name)
	trimPtr(r.Slug)
	trimPtr(r.Description)
	if r.ParentID != nil && strings.TrimSpace(*r.ParentID) == "" {
		r.ParentID = nil
	}
	return validateStruct(r)
}

// BuildCategoryTree, düz kategori listesini ağaca çevirir.
// Parent'ı listede olmayan kategoriler köke eklenir. Her seviye
// position, sonra isim sırasıyla dizilir. Girdi slice'ı değiştirilmez.
func BuildCategoryTree(flat []Category) []*Category {
	nodes := make(map[string]*Category, len(flat))
	for i := range flat {
		c := flat[i]
		c.Children = nil
		nodes[c.ID] = &c
	}

	var roots []*Category
	for i := range flat {
		node := nodes[flat[i].ID]
		if node.ParentID != nil {
			if parent, ok := nodes[*node.ParentID]; ok && parent != node {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}

	sortCategories(roots)
	return roots
}

func sortCategories(list []*Category) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Position != list[j].Position {
			return list[i].Position < list[j].Position
		}
		return list[i].Name < list[j].Name
	})
	for _, c := range list {
		sortCategories(c.Children)
	}
}

// DescendantIDs, rootID ve tüm alt kategorilerinin ID'lerini döner (rootID dahil).
// Ürün filtrelerinde "Elektronik" seçildiğinde "Telefon" ürünleri de gelsin diye kullanılır.
func DescendantIDs(flat []Category, rootID string) []string {
	children := make(map[string][]string, len(flat))
	for _, c := range flat {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	seen := map[string]bool{rootID: true}
	ids := []string{rootID}
	queue := []string{rootID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, child := range children[id] {
			if seen[child] {
				continue
			}
			seen[child] = true
			ids = append(ids, child)
			queue = append(queue, child)
		}
	}
	return ids
}

// WouldCreateCycle, categoryID'nin parent'ı newParentID yapılırsa döngü
// oluşup oluşmayacağını kontrol eder. Kendine parent olmak da döngüdür.
func WouldCreateCycle(flat []Category, categoryID, newParentID string) bool {
	for _, id := range DescendantIDs(flat, categoryID) {
		if id == newParentID {
			return true
		}
	}
	return false
}
