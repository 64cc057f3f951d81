package models

// LayoutMode 漏斗布局模式
type LayoutMode string

const (
	// LayoutBottomDriven 自底向上计算，底部收为一点，相邻段严格衔接（默认）
	LayoutBottomDriven LayoutMode = "bottom-driven"
	// LayoutTopDriven 自顶向下计算，每段底边不小于最小半宽
	LayoutTopDriven LayoutMode = "top-driven"
)

// FailurePolicy 批量处理时单行失败的处理策略
type FailurePolicy string

const (
	// FailureAbort 遇到第一行错误即终止整个上传
	FailureAbort FailurePolicy = "abort"
	// FailureSkip 跳过出错的行，其余行照常生成
	FailureSkip FailurePolicy = "skip"
)

// StageRecord 单个漏斗阶段的实际值与目标值
type StageRecord struct {
	Name   string  `json:"name"`
	Actual float64 `json:"actual"` // Ist
	Target float64 `json:"target"` // Soll
}

// FunnelRow 一个报告周期（一行数据）的全部阶段
type FunnelRow struct {
	Index  int           `json:"index"`
	Stages []StageRecord `json:"stages"`
}

// MaxValue 该行所有实际值与目标值中的最大值
func (r FunnelRow) MaxValue() float64 {
	max := 0.0
	for _, s := range r.Stages {
		if s.Actual > max {
			max = s.Actual
		}
		if s.Target > max {
			max = s.Target
		}
	}
	return max
}

// Quarter 季度编号，严格等于行号+1
func (r FunnelRow) Quarter() int {
	return r.Index + 1
}

// Point 归一化坐标点
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Trapezoid 以 x=0.5 为中线的梯形
type Trapezoid struct {
	TopHalfWidth    float64 `json:"topHalfWidth"`
	BottomHalfWidth float64 `json:"bottomHalfWidth"`
	YTop            float64 `json:"yTop"`
	YBottom         float64 `json:"yBottom"`
}

// TextAnchor 文本的垂直对齐方式
type TextAnchor string

const (
	AnchorCenter TextAnchor = "center"
	AnchorBottom TextAnchor = "bottom"
	AnchorTop    TextAnchor = "top"
)

// TextLabel 文本标注
type TextLabel struct {
	Text     string     `json:"text"`
	Position Point      `json:"position"`
	Color    string     `json:"color"`
	FontSize float64    `json:"fontSize"`
	Bold     bool       `json:"bold"`
	Anchor   TextAnchor `json:"anchor"`
}

// Arrow 箭头，从 From 指向 To
type Arrow struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Measurement 测量标注：一条水平刻度线、两个向内的箭头和一个数值标签
type Measurement struct {
	Line   [2]Point  `json:"line"`
	Arrows [2]Arrow  `json:"arrows"`
	Label  TextLabel `json:"label"`
}

// StageShape 单个阶段的全部图形描述
type StageShape struct {
	Stage     string      `json:"stage"`
	Index     int         `json:"index"`
	Actual    Trapezoid   `json:"actual"`
	Target    Trapezoid   `json:"target"`
	Fill      []Point     `json:"fill"`    // 四个顶点
	Outline   []Point     `json:"outline"` // 五个顶点，首尾闭合
	FillColor string      `json:"fillColor"`
	Label     TextLabel   `json:"label"`
	IstMark   Measurement `json:"istMark"`
	SollMark  Measurement `json:"sollMark"`
}

// Bounds 画布范围
type Bounds struct {
	XMin float64 `json:"xMin"`
	XMax float64 `json:"xMax"`
	YMin float64 `json:"yMin"`
	YMax float64 `json:"yMax"`
}

// FunnelChart 单行数据对应的完整图表
type FunnelChart struct {
	Title    string       `json:"title"`
	Quarter  int          `json:"quarter"`
	Mode     LayoutMode   `json:"mode"`
	MaxValue float64      `json:"maxValue"`
	Bounds   Bounds       `json:"bounds"`
	Shapes   []StageShape `json:"shapes"`
}

// RowResult 单行处理结果，Chart 与 Error 二者取一
type RowResult struct {
	Row   int          `json:"row"`
	Chart *FunnelChart `json:"chart,omitempty"`
	Err   error        `json:"-"`
	Error string       `json:"error,omitempty"`
	Code  string       `json:"code,omitempty"`
}
