package entity

import "strings"

// BlockKind 页面块一侧的内容类型，取值即线上协议名
type BlockKind string

const (
	KindText  BlockKind = "paragraph" // 文本
	KindImage BlockKind = "url"       // 图片（或其他资源）地址
)

// Valid 是否为已知类型
func (k BlockKind) Valid() bool {
	return k == KindText || k == KindImage
}

// KindOf 根据 is_url 推导类型
func KindOf(isURL bool) BlockKind {
	if isURL {
		return KindImage
	}
	return KindText
}

// PageBlock 页面中的一行（左右两侧）
type PageBlock struct {
	LeftType     BlockKind `json:"leftType"`
	LeftContent  string    `json:"leftContent"`
	RightType    BlockKind `json:"rightType"`
	RightContent string    `json:"rightContent"`
}

// Page 某个父实体在某种语言下的完整页面（只读组合视图，不落库）
type Page struct {
	Title   string      `json:"title"`
	Content []PageBlock `json:"content"`
}

// EmptyPage 空页面：标题为空、块列表为空数组（而不是 null）
func EmptyPage() *Page {
	return &Page{Title: "", Content: []PageBlock{}}
}

// IsEmpty 标题与正文都为空
func (p *Page) IsEmpty() bool {
	return p == nil || (strings.TrimSpace(p.Title) == "" && len(p.Content) == 0)
}

// Normalize 补全缺省类型，缺省视为文本
func (p *Page) Normalize() {
	if p.Content == nil {
		p.Content = []PageBlock{}
	}
	for i := range p.Content {
		if p.Content[i].LeftType == "" {
			p.Content[i].LeftType = KindText
		}
		if p.Content[i].RightType == "" {
			p.Content[i].RightType = KindText
		}
	}
}
