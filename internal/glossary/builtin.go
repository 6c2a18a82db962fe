package glossary

// builtinConcepts is the hand-curated bilingual concept table for the
// legal/nuclear domain. It backstops gaps in the file-based glossary:
// clusters pair an Arabic canonical term with its variants and English
// translations so a query in either script surfaces related terms in
// both.
var builtinConcepts = []Entry{
	{Term: "ترخيص", Synonyms: []string{"التراخيص", "إصدار الترخيص", "رخصة", "license", "licensing", "permit"}},
	{Term: "المسؤولية المدنية", Synonyms: []string{"المسؤولية", "مسؤولية المشغل", "civil liability", "liability"}},
	{Term: "الضرر النووي", Synonyms: []string{"الأضرار النووية", "الضرر", "nuclear damage", "damage"}},
	{Term: "التعويض", Synonyms: []string{"التعويضات", "دفع التعويضات", "compensation", "indemnity"}},
	{Term: "المشغل", Synonyms: []string{"مشغل المنشأة", "operator"}},
	{Term: "المنشأة النووية", Synonyms: []string{"المنشآت النووية", "المنشأة", "nuclear installation", "nuclear facility", "facility"}},
	{Term: "الوقود النووي", Synonyms: []string{"الوقود", "nuclear fuel", "fuel"}},
	{Term: "المواد المشعة", Synonyms: []string{"المواد النووية", "radioactive material", "nuclear material"}},
	{Term: "النفايات المشعة", Synonyms: []string{"النفايات النووية", "إدارة النفايات", "radioactive waste", "waste management"}},
	{Term: "التعرض الإشعاعي", Synonyms: []string{"الإشعاع", "الإشعاع المؤين", "radiation exposure", "ionizing radiation"}},
	{Term: "الرقابة النووية", Synonyms: []string{"الرقابة", "الجهة الرقابية", "regulatory control", "oversight"}},
	{Term: "الهيئة", Synonyms: []string{"هيئة الرقابة النووية والإشعاعية", "الجهة المختصة", "commission", "authority", "regulator"}},
	{Term: "الضمان المالي", Synonyms: []string{"الضمانات المالية", "التأمين", "financial security", "insurance"}},
	{Term: "الأمان النووي", Synonyms: []string{"الأمان", "معايير الأمان", "nuclear safety", "safety"}},
	{Term: "الأمن النووي", Synonyms: []string{"الأمن", "nuclear security", "security"}},
	{Term: "الضمانات النووية", Synonyms: []string{"الضمانات", "safeguards"}},
	{Term: "اتفاقية فيينا", Synonyms: []string{"الاتفاقية", "الاتفاقيات", "اتفاقية", "vienna convention", "convention", "treaty"}},
	{Term: "التقادم", Synonyms: []string{"مدة التقادم", "prescription", "limitation period"}},
	{Term: "المطالبة", Synonyms: []string{"المطالبات", "دعوى التعويض", "claim", "claims"}},
	{Term: "التفتيش", Synonyms: []string{"المفتشون", "الفحص", "inspection", "inspectors"}},
	{Term: "الالتزامات", Synonyms: []string{"التزامات المشغل", "الواجبات", "obligations", "duties"}},
	{Term: "العقوبات", Synonyms: []string{"الجزاءات", "المخالفات", "penalties", "sanctions", "violations"}},
	{Term: "الطاقة النووية", Synonyms: []string{"الطاقة الذرية", "الاستخدامات السلمية", "nuclear energy", "atomic energy", "peaceful uses"}},
	{Term: "حماية البيئة", Synonyms: []string{"البيئة", "الحماية البيئية", "environmental protection", "environment"}},
	{Term: "الطوارئ", Synonyms: []string{"خطة الطوارئ", "إجراءات الطوارئ", "emergency", "emergency preparedness"}},
}

// Builtin returns the built-in bilingual concept source.
func Builtin() TermSource {
	return NewStaticSource(builtinConcepts)
}
