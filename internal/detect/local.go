package detect

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"regexp"
	"sort"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"
)

// LocalDetector proposes sensitive regions without a network round trip:
// morphology joins printed text into line blobs, each blob is OCRed, and
// blobs whose text looks like contact information are flagged. Used when no
// API key is configured.
type LocalDetector struct {
	ocr *gosseract.Client
}

// LocalResult carries the flagged regions plus a page skew estimate in
// degrees, fitted through the word positions of the widest text line.
type LocalResult struct {
	Regions     []Region
	SkewDegrees float64
}

var sensitivePatterns = []struct {
	label string
	re    *regexp.Regexp
}{
	{"phone number", regexp.MustCompile(`\+?\(?\d[\d\s\-().]{6,}\d`)},
	{"e-mail address", regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)},
	{"web address", regexp.MustCompile(`(?i)(www\.|https?://)\S+`)},
	{"contact field", regexp.MustCompile(`(?i)(©|\(c\)|\btel\b|\bfax\b|\bphone\b|e-?mail|电话|传真|邮箱|地址|有限公司)`)},
}

// NewLocalDetector creates a detector with an English+Chinese OCR client.
func NewLocalDetector() (*LocalDetector, error) {
	client := gosseract.NewClient()
	if err := client.SetLanguage("eng", "chi_sim"); err != nil {
		// chi_sim traineddata is often missing; English alone still finds
		// phone numbers and addresses.
		if err := client.SetLanguage("eng"); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set OCR language: %w", err)
		}
	}
	return &LocalDetector{ocr: client}, nil
}

// Close releases OCR resources.
func (d *LocalDetector) Close() error {
	if d.ocr != nil {
		return d.ocr.Close()
	}
	return nil
}

// Detect scans the page for text regions carrying contact information.
// Regions are returned on the 0-1000 scale so they flow through the same
// reconciler as remote detections.
func (d *LocalDetector) Detect(img image.Image) (LocalResult, error) {
	rgba := toRGBA(img)
	w := rgba.Bounds().Dx()
	h := rgba.Bounds().Dy()

	mat, err := gocv.NewMatFromBytes(h, w, gocv.MatTypeCV8UC4, rgba.Pix)
	if err != nil {
		return LocalResult{}, fmt.Errorf("local detect: %w", err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorRGBAToGray)

	candidates := proposeTextRegions(gray, w, h)

	var result LocalResult
	for _, rect := range candidates {
		text, err := d.recognize(gray, rect)
		if err != nil {
			continue // one unreadable blob must not sink the scan
		}
		label, sensitive := classify(text)
		if !sensitive {
			continue
		}
		result.Regions = append(result.Regions, Region{
			Label: label,
			Box: [4]float64{
				float64(rect.Min.Y) * 1000 / float64(h),
				float64(rect.Min.X) * 1000 / float64(w),
				float64(rect.Max.Y) * 1000 / float64(h),
				float64(rect.Max.X) * 1000 / float64(w),
			},
		})
	}

	if len(candidates) > 0 {
		result.SkewDegrees = d.estimateSkew(gray, widest(candidates))
	}
	return result, nil
}

// proposeTextRegions binarizes the page and dilates horizontally so the
// glyphs of one text line merge into a single contour.
func proposeTextRegions(gray gocv.Mat, w, h int) []image.Rectangle {
	bin := gocv.NewMat()
	defer bin.Close()
	gocv.AdaptiveThreshold(gray, &bin, 255, gocv.AdaptiveThresholdMean, gocv.ThresholdBinaryInv, 25, 15)

	kw := w / 60
	if kw < 5 {
		kw = 5
	}
	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(kw, 3))
	defer kernel.Close()
	dilated := gocv.NewMat()
	defer dilated.Close()
	gocv.Dilate(bin, &dilated, kernel)

	contours := gocv.FindContours(dilated, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var rects []image.Rectangle
	for i := 0; i < contours.Size(); i++ {
		r := gocv.BoundingRect(contours.At(i))
		// Reject specks and region proposals the size of the whole view.
		if r.Dx() < w/50 || r.Dy() < 8 || r.Dy() > h/4 {
			continue
		}
		rects = append(rects, r)
	}
	sort.Slice(rects, func(i, j int) bool {
		if rects[i].Min.Y != rects[j].Min.Y {
			return rects[i].Min.Y < rects[j].Min.Y
		}
		return rects[i].Min.X < rects[j].Min.X
	})
	return rects
}

// recognize OCRs one region of the grayscale page.
func (d *LocalDetector) recognize(gray gocv.Mat, rect image.Rectangle) (string, error) {
	region := gray.Region(rect)
	defer region.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, region)
	if err != nil {
		return "", fmt.Errorf("failed to encode region: %w", err)
	}
	defer buf.Close()

	if err := d.ocr.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return "", err
	}
	if err := d.ocr.SetImageFromBytes(buf.GetBytes()); err != nil {
		return "", err
	}
	return d.ocr.Text()
}

// classify reports whether OCRed text looks like customer-identifying
// contact information.
func classify(text string) (string, bool) {
	for _, p := range sensitivePatterns {
		if p.re.MatchString(text) {
			return p.label, true
		}
	}
	return "", false
}

// estimateSkew fits a least-squares line through the word-box centers of
// the given text line and converts the slope to degrees. Scans fed in
// sideways or photographed at an angle show up here.
func (d *LocalDetector) estimateSkew(gray gocv.Mat, line image.Rectangle) float64 {
	region := gray.Region(line)
	defer region.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, region)
	if err != nil {
		return 0
	}
	defer buf.Close()

	if err := d.ocr.SetImageFromBytes(buf.GetBytes()); err != nil {
		return 0
	}
	boxes, err := d.ocr.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) < 3 {
		return 0
	}

	xs := make([]float64, len(boxes))
	ys := make([]float64, len(boxes))
	for i, b := range boxes {
		xs[i] = float64(b.Box.Min.X+b.Box.Max.X) / 2
		ys[i] = float64(b.Box.Min.Y+b.Box.Max.Y) / 2
	}
	_, beta := stat.LinearRegression(xs, ys, nil, false)
	return radToDeg(beta)
}

func widest(rects []image.Rectangle) image.Rectangle {
	best := rects[0]
	for _, r := range rects[1:] {
		if r.Dx() > best.Dx() {
			best = r
		}
	}
	return best
}

func radToDeg(slope float64) float64 {
	// Slope of a text baseline; atan keeps large outliers sane.
	return math.Atan(slope) * 180 / math.Pi
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}
