package executor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"giftvideo-service/ddd/domain/gateway"
	"giftvideo-service/pkg/config"
	"giftvideo-service/pkg/logger"
)

// stickerGlyphs 贴纸ID到emoji字形的映射。找不到贴纸素材文件时
// 用drawtext渲染对应字形兜底，渲染绝不因缺素材而失败。
var stickerGlyphs = map[string]string{
	"heart":    "❤",
	"star":     "⭐",
	"balloon":  "🎈",
	"cake":     "🎂",
	"gift":     "🎁",
	"smile":    "😊",
	"confetti": "🎉",
	"rainbow":  "🌈",
	"thumbsup": "👍",
}

// defaultStickerGlyph 未知贴纸ID的兜底字形
const defaultStickerGlyph = "✨"

// filterChains 滤镜ID到ffmpeg滤镜表达式的映射
var filterChains = map[string]string{
	"grayscale": "hue=s=0",
	"sepia":     "colorchannelmixer=.393:.769:.189:0:.349:.686:.168:0:.272:.534:.131:0",
	"vintage":   "curves=vintage",
	"warm":      "eq=gamma_r=1.1:gamma_b=0.9",
	"cool":      "eq=gamma_r=0.9:gamma_b=1.1",
	"bright":    "eq=brightness=0.08:saturation=1.2",
}

// FFmpegRenderer 基于本地ffmpeg的合成渲染引擎
type FFmpegRenderer struct {
	cfg *config.Config
}

func NewFFmpegRenderer(cfg *config.Config) gateway.RenderEngine {
	if cfg == nil {
		cfg = config.GetGlobalConfig()
	}
	return &FFmpegRenderer{cfg: cfg}
}

// Render 按固定顺序应用编辑并产出最终视频：滤镜 → 文字 → 贴纸 → 边框 → 混音。
// 超时（来自ctx）被归类为可重试错误，ffmpeg自身的失败视为终态错误。
func (r *FFmpegRenderer) Render(ctx context.Context, req gateway.RenderRequest) error {
	if req.InputPath == "" || req.OutputPath == "" {
		return errors.New("render request missing input or output path")
	}
	if err := os.MkdirAll(filepath.Dir(req.OutputPath), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	assetDir := ""
	binary := "ffmpeg"
	if r.cfg != nil {
		assetDir = r.cfg.Compose.StickerAssetDir
		if r.cfg.Compose.FFmpeg.BinaryPath != "" {
			binary = r.cfg.Compose.FFmpeg.BinaryPath
		}
	}

	args := BuildRenderArgs(req, assetDir)
	logger.Infof("ffmpeg render job_uuid=%s command=%s %s", req.JobUUID, binary, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, binary, args...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("create ffmpeg stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return gateway.NewTransientRenderError(fmt.Errorf("start ffmpeg: %w", err))
	}

	tail := make([]string, 0, 50)
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 1024), 1024*1024)
	for scanner.Scan() {
		if len(tail) >= 50 {
			tail = tail[1:]
		}
		tail = append(tail, scanner.Text())
	}

	if err := cmd.Wait(); err != nil {
		if len(tail) > 0 {
			logger.Errorf("ffmpeg render failed job_uuid=%s tail_stderr=%s", req.JobUUID, strings.Join(tail, "\n"))
		}
		// 渲染被超时或取消打断时留给上层重试
		if ctx.Err() != nil {
			return gateway.NewTransientRenderError(ctx.Err())
		}
		return fmt.Errorf("ffmpeg render failed: %w", err)
	}

	info, err := os.Stat(req.OutputPath)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("ffmpeg produced no output: %s", req.OutputPath)
	}
	return nil
}

// BuildRenderArgs 构造完整的ffmpeg参数列表。独立成纯函数，方便直接
// 校验编辑顺序与输入编号，不需要真的跑ffmpeg。
func BuildRenderArgs(req gateway.RenderRequest, assetDir string) []string {
	spec := req.Spec.Normalize()

	args := []string{"-y", "-i", req.InputPath}
	inputIdx := 1

	// 有素材文件的贴纸走独立输入，没有的回落到emoji字形
	type rasterSticker struct {
		inputIdx int
		x, y     float64
		scale    float64
	}
	var rasters []rasterSticker
	var glyphs []string // drawtext片段，延后拼进链

	for _, st := range spec.Stickers {
		assetPath := stickerAssetPath(assetDir, st.ID)
		if assetPath != "" {
			args = append(args, "-i", assetPath)
			rasters = append(rasters, rasterSticker{inputIdx: inputIdx, x: st.X, y: st.Y, scale: st.Scale})
			inputIdx++
			continue
		}
		glyph, ok := stickerGlyphs[st.ID]
		if !ok {
			glyph = defaultStickerGlyph
		}
		glyphs = append(glyphs, fmt.Sprintf(
			"drawtext=text='%s':fontsize=h/10*%.2f:x=(w*%.2f/100)-(text_w/2):y=(h*%.2f/100)-(text_h/2)",
			glyph, st.Scale, st.X, st.Y))
	}

	frameIdx := -1
	if spec.FramePNGPath != "" {
		args = append(args, "-i", spec.FramePNGPath)
		frameIdx = inputIdx
		inputIdx++
	}

	audioIdx := -1
	if req.AudioPath != "" {
		args = append(args, "-i", req.AudioPath)
		audioIdx = inputIdx
		inputIdx++
	}

	var parts []string
	cur := "[0:v]"
	next := 0
	advance := func(expr string) {
		label := fmt.Sprintf("[v%d]", next)
		parts = append(parts, cur+expr+label)
		cur = label
		next++
	}

	// 1. 滤镜
	if spec.FilterID != "" {
		if chain, ok := filterChains[spec.FilterID]; ok {
			advance(chain)
		}
	}

	// 2. 自定义文字
	if spec.CustomText != "" {
		advance(fmt.Sprintf(
			"drawtext=text='%s':fontsize=h/16:fontcolor=%s:borderw=2:bordercolor=black:x=(w-text_w)/2:y=%s",
			escapeDrawtext(spec.CustomText), spec.CustomTextColor, textYExpr(spec.CustomTextPosition)))
	}

	// 3. 贴纸：素材叠加在前，字形兜底在后
	for _, rs := range rasters {
		scaled := fmt.Sprintf("[s%d]", rs.inputIdx)
		parts = append(parts, fmt.Sprintf("[%d:v]scale=iw*%.2f:-1%s", rs.inputIdx, rs.scale, scaled))
		label := fmt.Sprintf("[v%d]", next)
		parts = append(parts, fmt.Sprintf("%s%soverlay=x=(W*%.2f/100)-(w/2):y=(H*%.2f/100)-(h/2)%s",
			cur, scaled, rs.x, rs.y, label))
		cur = label
		next++
	}
	for _, g := range glyphs {
		advance(g)
	}

	// 4. 边框：整帧覆盖，随主画面尺寸缩放
	if frameIdx >= 0 {
		fr := fmt.Sprintf("[f%d]", frameIdx)
		base := fmt.Sprintf("[b%d]", frameIdx)
		parts = append(parts, fmt.Sprintf("[%d:v]%sscale2ref%s%s", frameIdx, cur, fr, base))
		label := fmt.Sprintf("[v%d]", next)
		parts = append(parts, fmt.Sprintf("%s%soverlay=0:0%s", base, fr, label))
		cur = label
		next++
	}

	// 5. 混音：背景音乐与原声混合，时长跟随主视频
	audioOut := ""
	if audioIdx >= 0 {
		audioOut = "[aout]"
		parts = append(parts, fmt.Sprintf("[0:a][%d:a]amix=inputs=2:duration=first:dropout_transition=2%s", audioIdx, audioOut))
	}

	if len(parts) == 0 && audioOut == "" {
		// 空编辑：纯转封装，保证输出始终是标准mp4
		args = append(args, "-c:v", "libx264", "-preset", "medium", "-c:a", "aac", "-movflags", "+faststart", req.OutputPath)
		return args
	}

	if len(parts) == 0 {
		parts = append(parts, "[0:v]null[v0]")
		cur = "[v0]"
	}

	args = append(args, "-filter_complex", strings.Join(parts, ";"))
	args = append(args, "-map", cur)
	if audioOut != "" {
		args = append(args, "-map", audioOut)
	} else {
		args = append(args, "-map", "0:a?")
	}
	args = append(args,
		"-c:v", "libx264",
		"-preset", "medium",
		"-c:a", "aac",
		"-b:a", "128k",
		"-movflags", "+faststart",
		req.OutputPath,
	)
	return args
}

// stickerAssetPath 查找贴纸素材文件，不存在返回空串
func stickerAssetPath(assetDir, stickerID string) string {
	if assetDir == "" || stickerID == "" {
		return ""
	}
	p := filepath.Join(assetDir, stickerID+".png")
	if info, err := os.Stat(p); err == nil && !info.IsDir() {
		return p
	}
	return ""
}

// textYExpr 文字位置到y轴表达式
func textYExpr(position string) string {
	switch position {
	case "top":
		return "h*0.08"
	case "center":
		return "(h-text_h)/2"
	default: // bottom
		return "h*0.85"
	}
}

// escapeDrawtext 转义drawtext文本中的特殊字符
func escapeDrawtext(text string) string {
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return replacer.Replace(text)
}
