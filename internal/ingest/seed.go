package ingest

import (
	"github.com/qanoonhq/qanoon/internal/access"
	"github.com/qanoonhq/qanoon/internal/arabic"
	"github.com/qanoonhq/qanoon/internal/store"
)

// seedDoc is one demo document injected by the --seed-restricted flag to
// exercise the access gates without real restricted material.
type seedDoc struct {
	docID string
	text  string
	roles []string
}

var seedDocs = []seedDoc{
	{
		docID: "Restricted Nuclear Safety Protocol",
		text: "المادة الأولى - بروتوكول الأمان النووي المقيد\n" +
			"هذا المستند يحتوي على معلومات حساسة حول بروتوكولات الأمان النووي المتقدمة. " +
			"هذه المعلومات مقيدة للوصول من قبل المستشارين القانونيين ومديري النظام فقط.",
		roles: []string{access.RoleLegal, access.RoleAdmin},
	},
	{
		docID: "Confidential Restricted Nuclear Waste Management",
		text: "المادة الأولى - إدارة النفايات النووية المقيدة\n" +
			"هذا المستند سري ومقيد ويحتوي على معلومات حساسة حول إدارة النفايات النووية عالية الخطورة. " +
			"الوصول مقيد للمستشارين القانونيين ومديري النظام فقط.",
		roles: []string{access.RoleLegal, access.RoleAdmin},
	},
	{
		docID: "Public Nuclear Energy Policy",
		text: "المادة الأولى - السياسة العامة للطاقة النووية\n" +
			"هذا المستند عام ومتاح لجميع المستخدمين. يحتوي على معلومات عامة حول سياسة الطاقة النووية.",
		roles: []string{access.RoleStaff, access.RoleLegal, access.RoleAdmin},
	},
}

// SeedChunks returns the demo document set: two restricted documents for
// the privileged roles and one public control document.
func SeedChunks() []store.Chunk {
	chunks := make([]store.Chunk, 0, len(seedDocs))
	for _, doc := range seedDocs {
		chunks = append(chunks, store.Chunk{
			ID:        doc.docID + "::art1",
			DocID:     doc.docID,
			ArticleNo: "1",
			Pages:     []int{1},
			Text:      doc.text,
			NormText:  arabic.Normalize(doc.text),
			Roles:     append([]string(nil), doc.roles...),
		})
	}
	return chunks
}
