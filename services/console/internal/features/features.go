package features

// Mode selects how a feature presents its data. The set is closed; adding a
// presentation means adding a case everywhere a Mode is switched on.
type Mode int

const (
	ModeGallery Mode = iota
	ModeAnalytics
	ModeTable
)

func (m Mode) String() string {
	switch m {
	case ModeGallery:
		return "gallery"
	case ModeAnalytics:
		return "analytics"
	case ModeTable:
		return "table"
	default:
		return "unknown"
	}
}

// Feature describes one console module.
type Feature struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ActionLabel string `json:"actionLabel"`
	Mode        Mode   `json:"-"`
	ModeName    string `json:"mode"`
}

var registry = []Feature{
	// Design
	{ID: "manual", Title: "招商手册设计", Description: "智能生成高质量招商手册PPT，支持一键导出PDF/PPTX。", ActionLabel: "新建手册", Mode: ModeGallery},
	{ID: "poster", Title: "招商海报设计", Description: "海量营销海报模板，支持一键替换文案与Logo。", ActionLabel: "新建海报", Mode: ModeGallery},
	{ID: "scripts", Title: "招商话术 (百问百答)", Description: "AI 辅助生成标准化销售话术库，提升团队专业度。", ActionLabel: "添加话术", Mode: ModeTable},
	// Growth
	{ID: "geo", Title: "GEO 全网推广", Description: "基于地理位置的精准广告投放与效果监控。", ActionLabel: "新建投放计划", Mode: ModeAnalytics},
	{ID: "digital-human", Title: "数字人短视频", Description: "无需真人出镜，AI 数字人批量生产口播视频。", ActionLabel: "制作视频", Mode: ModeGallery},
	{ID: "matrix", Title: "短视频矩阵系统", Description: "多账号统一管理，一键分发视频内容。", ActionLabel: "绑定账号", Mode: ModeAnalytics},
	{ID: "ai-acquisition", Title: "AI 拓客系统", Description: "全网挖掘潜在客户线索，自动清洗去重。", ActionLabel: "开始拓客", Mode: ModeTable},
	// Sales
	{ID: "live", Title: "招商日不落直播间", Description: "7x24小时无人值守直播，持续获取线索。", ActionLabel: "开启直播", Mode: ModeAnalytics},
	{ID: "private-followup", Title: "个微私域跟进", Description: "个人微信自动化运营工具，提升私域转化率。", ActionLabel: "添加账号", Mode: ModeTable},
	{ID: "enterprise-wechat", Title: "企微客户管理", Description: "企业微信客户资产管理与风控系统。", ActionLabel: "同步客户", Mode: ModeTable},
}

// All returns the registry in display order.
func All() []Feature {
	out := make([]Feature, len(registry))
	copy(out, registry)
	for i := range out {
		out[i].ModeName = out[i].Mode.String()
	}
	return out
}

// Lookup finds a feature by id.
func Lookup(id string) (Feature, bool) {
	for _, f := range registry {
		if f.ID == id {
			f.ModeName = f.Mode.String()
			return f, true
		}
	}
	return Feature{}, false
}
