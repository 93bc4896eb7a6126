package figma

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"
)

const downloadWorkers = 4

var ErrPathTraversal = errors.New("invalid path specified. Directory traversal is not allowed")

var svgOptions = url.Values{
	"svg_outline_text":    {"true"},
	"svg_include_id":      {"false"},
	"svg_simplify_stroke": {"true"},
}

// ResolveTarget returns the absolute form of path, which must lie inside root.
func ResolveTarget(root, path string) (string, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", oops.In("figma").Errorf("failed to resolve root: %w", err)
	}
	target := path
	if !filepath.IsAbs(target) {
		target = filepath.Join(rootAbs, target)
	}
	target = filepath.Clean(target)

	rel, err := filepath.Rel(rootAbs, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}
	return target, nil
}

// FinalName inserts suffix before the extension unless name already has it.
func FinalName(name, suffix string) string {
	if strings.TrimSpace(suffix) == "" || strings.Contains(name, suffix) {
		return name
	}
	if idx := strings.LastIndex(name, "."); idx > 0 {
		return name[:idx] + "-" + suffix + name[idx:]
	}
	return name + "-" + suffix
}

type downloadJob struct {
	fileName string
	url      string
}

// DownloadImages saves fills and rendered nodes under dir, which is created
// when missing. It returns the saved file names in fill, png, svg order.
func (c *Client) DownloadImages(ctx context.Context, fileKey, dir string, items []DownloadItem, pngScale int) ([]string, error) {
	if pngScale <= 0 {
		pngScale = 2
	}
	items = pie.Map(pie.Filter(items, func(it DownloadItem) bool {
		return it.FileName != ""
	}), func(it DownloadItem) DownloadItem {
		it.FileName = FinalName(it.FileName, it.FilenameSuffix)
		return it
	})

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, oops.In("figma").With("dir", dir).Errorf("failed to create directory: %w", err)
	}

	var jobs []downloadJob

	fills := pie.Filter(items, func(it DownloadItem) bool { return it.ImageRef != "" })
	if len(fills) > 0 {
		urls, err := c.GetImageFills(ctx, fileKey)
		if err != nil {
			return nil, err
		}
		for _, it := range fills {
			if u, ok := urls[it.ImageRef]; ok && u != "" {
				jobs = append(jobs, downloadJob{fileName: it.FileName, url: u})
			}
		}
	}

	renders := pie.Filter(items, func(it DownloadItem) bool { return it.NodeID != "" })
	isSVG := func(it DownloadItem) bool {
		return strings.HasSuffix(strings.ToLower(it.FileName), ".svg")
	}
	pngs := pie.Filter(renders, func(it DownloadItem) bool { return !isSVG(it) })
	svgs := pie.Filter(renders, isSVG)

	renderJobs := func(group []DownloadItem, format string, extra url.Values) error {
		if len(group) == 0 {
			return nil
		}
		ids := pie.Unique(pie.Map(group, func(it DownloadItem) string { return it.NodeID }))
		urls, err := c.GetImages(ctx, fileKey, ids, format, extra)
		if err != nil {
			return err
		}
		for _, it := range group {
			if u, ok := urls[it.NodeID]; ok {
				jobs = append(jobs, downloadJob{fileName: it.FileName, url: u})
			}
		}
		return nil
	}

	if err := renderJobs(pngs, "png", url.Values{"scale": {strconv.Itoa(pngScale)}}); err != nil {
		return nil, err
	}
	if err := renderJobs(svgs, "svg", svgOptions); err != nil {
		return nil, err
	}

	for _, job := range jobs {
		if _, err := ResolveTarget(dir, job.fileName); err != nil {
			return nil, oops.In("figma").With("file_name", job.fileName).Wrap(err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadWorkers)

	for _, job := range jobs {
		g.Go(func() error {
			data, err := c.Download(gctx, job.url)
			if err != nil {
				return oops.In("figma").With("file_name", job.fileName).Errorf("failed to download image: %w", err)
			}
			if err = os.WriteFile(filepath.Join(dir, job.fileName), data, 0o644); err != nil {
				return oops.In("figma").With("file_name", job.fileName).Errorf("failed to save image: %w", err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return pie.Map(jobs, func(j downloadJob) string { return j.fileName }), nil
}
