package feed

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"

	"feed-scraper/pkg/fetch"
	"feed-scraper/pkg/utils"
)

// Parser turns a fetched product page into entities. Implementations are
// vendor-specific and own all HTML semantics; the pipeline only supplies
// bytes plus the originating link.
type Parser interface {
	// ParseProduct returns the entities found on one product page. A group
	// page returns the assembled parent; most pages return one item.
	ParseProduct(resp *fetch.Response) ([]*Item, error)
}

// Lines of goroutine stack kept when a parser panics. Enough to name the
// failing parser frame without flooding the log.
const panicStackLines = 12

// BuildEntities drives one parser invocation behind a recover boundary.
// A panicking or failing parser yields no entities and an ErrEntityBuild;
// the crawl continues with the page dropped.
func BuildEntities(p Parser, resp *fetch.Response, log *logrus.Entry) (items []*Item, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 16*1024)
			n := runtime.Stack(buf, false)
			stack := trimStack(string(buf[:n]))
			log.WithFields(logrus.Fields{
				"parser": fmt.Sprintf("%T", p),
				"url":    resp.Link.URL,
			}).Errorf("Parser panicked: %v\n%s", r, stack)
			items = nil
			err = fmt.Errorf("%w: parser %T panicked on %s: %v", utils.ErrEntityBuild, p, resp.Link.URL, r)
		}
	}()

	items, err = p.ParseProduct(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", utils.ErrEntityBuild, resp.Link.URL, err)
	}
	return items, nil
}

func trimStack(stack string) string {
	lines := strings.Split(stack, "\n")
	if len(lines) > panicStackLines {
		lines = lines[:panicStackLines]
		lines = append(lines, "...")
	}
	return strings.Join(lines, "\n")
}
