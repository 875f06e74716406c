package processor

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/sirupsen/logrus"

	"lecture-insights-go/internal/apperr"
)

var driveFileID = regexp.MustCompile(`/file/d/([^/]+)/`)

// DownloadURL rewrites a Google Drive share link into a direct download
// link. Other URLs are returned unchanged.
func DownloadURL(raw string) string {
	if !strings.Contains(raw, "drive.google.com") {
		return raw
	}
	if m := driveFileID.FindStringSubmatch(raw); m != nil {
		return "https://drive.google.com/uc?export=download&id=" + m[1]
	}
	return raw
}

func (p *Processor) download(ctx context.Context, raw string, log *logrus.Entry) ([]byte, string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, "", &apperr.ValidationError{Field: "audio_url", Reason: "must be an http(s) URL"}
	}

	target := DownloadURL(u.String())
	if target != u.String() {
		log.WithField("download_url", target).Info("google drive link rewritten")
	}

	resp, err := p.http.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(target)
	if err != nil {
		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
		return nil, "", &apperr.ValidationError{Field: "audio_url", Reason: fmt.Sprintf("failed to download audio: %v", err)}
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() >= 300 {
		return nil, "", &apperr.ValidationError{
			Field:  "audio_url",
			Reason: fmt.Sprintf("failed to download audio: http %d", resp.StatusCode()),
		}
	}

	limit := p.cfg.MaxDownloadBytes()
	if cl := resp.RawResponse.ContentLength; cl > limit {
		return nil, "", &apperr.ValidationError{
			Field:    "audio_url",
			Reason:   fmt.Sprintf("file size exceeds %s limit", humanize.IBytes(uint64(limit))),
			TooLarge: true,
		}
	}

	data, err := readCapped(body, limit)
	if err != nil {
		return nil, "", err
	}
	if err := checkAudio(data); err != nil {
		return nil, "", err
	}

	name := path.Base(u.Path)
	if !allowedExtension(name) {
		name = "download" + mimetype.Detect(data).Extension()
	}
	log.WithFields(logrus.Fields{
		"size": humanize.Bytes(uint64(len(data))),
		"name": name,
	}).Info("file downloaded successfully")
	return data, name, nil
}
