package webui

import (
	"context"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"timberprices.msstate.edu/internal/logging"
	"timberprices.msstate.edu/internal/store"
	"timberprices.msstate.edu/internal/stumpage"
)

type debugData struct {
	Title string
	Pre   string
}

type snapshotLister interface {
	ListSnapshots(ctx context.Context, source string) ([]store.SnapshotInfo, error)
}

var dumpConfig = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

func (webUI *WebUI) writeDebugData(w http.ResponseWriter, r *http.Request, title string, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	dataStruct := debugData{
		Title: title,
		Pre:   dumpConfig.Sdump(data),
	}

	if err := debugTemplate.Execute(w, dataStruct); err != nil {
		logging.LogError(logging.FromContext(r.Context()), "failed to render debug page", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	dataType := r.URL.Query().Get("dataType")

	var data interface{}
	var title string

	switch dataType {
	case "records":
		data = webUI.dataset()
		title = "Stumpage - Records"
	case "types":
		data = webUI.dataset().Types()
		title = "Stumpage - Types"
	case "status":
		data = webUI.status()
		title = "Stumpage - Status"
	case "tables":
		data = webUI.tableCounts(r.Context())
		title = "Store - Table Row Counts"
	case "snapshots":
		data = webUI.snapshots(r.Context())
		title = "Store - Snapshots"
	default:
		data = map[string]string{
			"error": "Please use one of the following: records, types, status, tables, snapshots.",
		}
		title = "Choose a data type"
	}

	webUI.writeDebugData(w, r, title, data)
}

func (webUI *WebUI) dataset() stumpage.Dataset {
	if webUI.Manager == nil {
		return nil
	}
	return webUI.Manager.Dataset()
}

func (webUI *WebUI) status() interface{} {
	if webUI.Manager == nil {
		return map[string]string{"error": "no dataset manager"}
	}
	return webUI.Manager.Status()
}

func (webUI *WebUI) tableCounts(ctx context.Context) interface{} {
	if webUI.Debugger == nil {
		return map[string]string{"error": "no store configured"}
	}
	counts, err := webUI.Debugger.TableCounts(ctx)
	if err != nil {
		return map[string]string{"error": err.Error()}
	}
	return counts
}

func (webUI *WebUI) snapshots(ctx context.Context) interface{} {
	lister, ok := webUI.Debugger.(snapshotLister)
	if !ok || webUI.Manager == nil {
		return map[string]string{"error": "snapshots are not available"}
	}
	snapshots, err := lister.ListSnapshots(ctx, webUI.Manager.Source())
	if err != nil {
		return map[string]string{"error": err.Error()}
	}
	return snapshots
}
