// Package monitoring exposes a running simulation over a small JSON HTTP
// API. The monitor can pause and resume the engine, tick controllers,
// inspect components, and report road levels, trip progress, and process
// resource usage.
package monitoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"sort"
	"strconv"
	"strings"
	"time"

	// Enable profiling
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/greenwave/roadnet"
	"github.com/sarchlab/greenwave/sim"
	"github.com/sarchlab/greenwave/vehicle"
)

// Monitor can turn a simulation into a server and allows external monitoring
// and controlling of the simulation.
type Monitor struct {
	engine     sim.Engine
	network    *roadnet.Network
	generator  *vehicle.Generator
	components []sim.Component
	portNumber int
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port number of the monitor. Ports below 1000 are
// refused and replaced with a random free port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		log.Warnf("port %d is not allowed for the monitoring server, "+
			"using a random port instead", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterEngine registers the engine that is used in the simulation.
func (m *Monitor) RegisterEngine(e sim.Engine) {
	m.engine = e
}

// RegisterNetwork registers the road network whose levels are reported.
func (m *Monitor) RegisterNetwork(n *roadnet.Network) {
	m.network = n
}

// RegisterGenerator registers the generator whose progress is reported.
func (m *Monitor) RegisterGenerator(g *vehicle.Generator) {
	m.generator = g
}

// RegisterComponent registers a component to be monitored.
func (m *Monitor) RegisterComponent(c sim.Component) {
	m.components = append(m.components, c)
}

// StartServer starts the monitor as a web server.
func (m *Monitor) StartServer() {
	r := mux.NewRouter()

	r.HandleFunc("/api/pause", m.pauseEngine)
	r.HandleFunc("/api/continue", m.continueEngine)
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/run", m.run)
	r.HandleFunc("/api/tick/{name}", m.tick)
	r.HandleFunc("/api/list_components", m.listComponents)
	r.HandleFunc("/api/component/{name}", m.listComponentDetails)
	r.HandleFunc("/api/field/{json}", m.listFieldValue)
	r.HandleFunc("/api/roads", m.listRoadLevels)
	r.HandleFunc("/api/progress", m.reportProgress)
	r.HandleFunc("/api/resource", m.listResources)
	r.HandleFunc("/api/profile", m.collectProfile)
	http.Handle("/", r)

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	log.Infof("monitoring simulation with http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)

	go func() {
		err = http.Serve(listener, nil)
		dieOnErr(err)
	}()
}

func (m *Monitor) pauseEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Pause()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) continueEngine(w http.ResponseWriter, _ *http.Request) {
	m.engine.Continue()
	_, err := w.Write(nil)
	dieOnErr(err)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	now := m.engine.CurrentTime()
	fmt.Fprintf(w, "{\"now\":%.10f}", now)
}

func (m *Monitor) run(_ http.ResponseWriter, _ *http.Request) {
	go func() {
		err := m.engine.Run()
		if err != nil {
			panic(err)
		}
	}()
}

func (m *Monitor) listComponents(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(m.components))
	for _, c := range m.components {
		names = append(names, c.Name())
	}

	rsp, err := json.Marshal(names)
	dieOnErr(err)

	_, err = w.Write(rsp)
	dieOnErr(err)
}

type tickingComponent interface {
	TickLater()
}

func (m *Monitor) tick(w http.ResponseWriter, r *http.Request) {
	compName := mux.Vars(r)["name"]

	comp := m.findComponentOr404(w, compName)
	if comp == nil {
		return
	}

	tickingComp, ok := comp.(tickingComponent)
	if !ok {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	tickingComp.TickLater()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) listComponentDetails(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	component := m.findComponentOr404(w, name)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)
	err := serializer.Serialize(w)

	dieOnErr(err)
}

type fieldReq struct {
	CompName  string `json:"comp_name,omitempty"`
	FieldName string `json:"field_name,omitempty"`
}

func (m *Monitor) listFieldValue(w http.ResponseWriter, r *http.Request) {
	jsonString := mux.Vars(r)["json"]
	req := fieldReq{}

	err := json.Unmarshal([]byte(jsonString), &req)
	dieOnErr(err)

	component := m.findComponentOr404(w, req.CompName)
	if component == nil {
		return
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(component)
	serializer.SetMaxDepth(1)

	err = serializer.SetEntryPoint(strings.Split(req.FieldName, "."))
	dieOnErr(err)

	err = serializer.Serialize(w)
	dieOnErr(err)
}

type roadLevelRsp struct {
	Road     string  `json:"road"`
	Colour   string  `json:"colour"`
	Queue    int     `json:"queue"`
	Occupied float64 `json:"occupied"`
	Length   float64 `json:"length"`
}

// listRoadLevels reports how full each road is, fullest first. Stuck runs
// show up as roads pinned at their capacity.
func (m *Monitor) listRoadLevels(w http.ResponseWriter, r *http.Request) {
	sortMethod, limit, offset, err := levelsParseParams(r)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprintf(w, "Error: %s", err)
		return
	}

	roads := m.sortAndSelectRoads(sortMethod, limit, offset)

	rsp := make([]roadLevelRsp, 0, len(roads))
	for _, road := range roads {
		rsp = append(rsp, roadLevelRsp{
			Road:     road.Name(),
			Colour:   road.Light().Colour().String(),
			Queue:    road.QueueLength(),
			Occupied: road.OccupiedLength(),
			Length:   road.Distance(),
		})
	}

	b, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

func levelsParseParams(
	r *http.Request,
) (sortMethod string, limit, offset int, err error) {
	sortMethod = r.URL.Query().Get("sort")
	if sortMethod == "" {
		sortMethod = "percent"
	}
	if sortMethod != "level" && sortMethod != "percent" {
		errStr := fmt.Sprintf(
			"Invalid sort method: %s. Allowed values are `level` and `percent`",
			sortMethod)
		return "", 0, 0, errors.New(errStr)
	}

	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		limitStr = "0"
	}
	limit, err = strconv.Atoi(limitStr)
	if err != nil {
		return sortMethod, 0, 0, err
	}

	offsetStr := r.URL.Query().Get("offset")
	if offsetStr == "" {
		offsetStr = "0"
	}
	offset, err = strconv.Atoi(offsetStr)
	if err != nil {
		return sortMethod, limit, 0, err
	}

	return sortMethod, limit, offset, nil
}

func roadPercent(r *roadnet.Road) float64 {
	return r.OccupiedLength() / r.Distance()
}

func (m *Monitor) sortAndSelectRoads(
	sortMethod string,
	limit, offset int,
) []*roadnet.Road {
	sorted := make([]*roadnet.Road, len(m.network.Roads()))
	copy(sorted, m.network.Roads())

	if sortMethod == "level" {
		sort.Slice(sorted, func(i, j int) bool {
			if sorted[i].QueueLength() != sorted[j].QueueLength() {
				return sorted[i].QueueLength() > sorted[j].QueueLength()
			}
			return roadPercent(sorted[i]) > roadPercent(sorted[j])
		})
	} else {
		sort.Slice(sorted, func(i, j int) bool {
			if roadPercent(sorted[i]) != roadPercent(sorted[j]) {
				return roadPercent(sorted[i]) > roadPercent(sorted[j])
			}
			return sorted[i].QueueLength() > sorted[j].QueueLength()
		})
	}

	if offset > len(sorted) {
		offset = len(sorted)
	}
	sorted = sorted[offset:]

	if limit > 0 && limit < len(sorted) {
		sorted = sorted[:limit]
	}

	return sorted
}

type progressRsp struct {
	Released  int `json:"released"`
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Dropped   int `json:"dropped"`
	EnRoute   int `json:"en_route"`
}

func (m *Monitor) reportProgress(w http.ResponseWriter, _ *http.Request) {
	rsp := progressRsp{
		Released: m.generator.Released(),
		Total:    m.generator.Count(),
	}

	for _, v := range m.generator.Vehicles() {
		switch {
		case v.Completed():
			rsp.Completed++
		case v.Dropped():
			rsp.Dropped++
		}
	}
	rsp.EnRoute = rsp.Released - rsp.Completed - rsp.Dropped

	b, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	dieOnErr(err)

	cpuPercent, err := proc.CPUPercent()
	dieOnErr(err)

	memoryInfo, err := proc.MemoryInfo()
	dieOnErr(err)

	rsp := resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memoryInfo.RSS,
	}

	b, err := json.Marshal(rsp)
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	dieOnErr(err)

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	b, err := json.Marshal(prof)
	dieOnErr(err)

	_, err = w.Write(b)
	dieOnErr(err)
}

func (m *Monitor) findComponentOr404(
	w http.ResponseWriter,
	name string,
) sim.Component {
	var component sim.Component
	for _, c := range m.components {
		if c.Name() == name {
			component = c
		}
	}

	if component == nil {
		w.WriteHeader(http.StatusNotFound)
		_, err := w.Write([]byte("Component not found"))
		dieOnErr(err)
	}

	return component
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
