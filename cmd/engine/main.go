package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/naufal-dp/routerx/pkg/datastructure"
	"github.com/naufal-dp/routerx/pkg/kv"
	"github.com/naufal-dp/routerx/pkg/osmparser"
	"github.com/naufal-dp/routerx/pkg/roadgraph"
	"github.com/naufal-dp/routerx/pkg/server/rest"
	"github.com/naufal-dp/routerx/pkg/server/rest/service"

	"github.com/dgraph-io/badger/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	_ "net/http/pprof"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

var (
	listenAddr   = flag.String("listenaddr", ":5000", "server listen address")
	mapFile      = flag.String("f", "jakarta.osm.pbf", "openstreetmap pbf file for the road network graph")
	kvDir        = flag.String("kvdir", "./routerx-kv", "directory for the street-snapping key-value db")
	kvInMemory   = flag.Bool("kvinmemory", false, "keep the snapping key-value db in memory")
	defaultSpeed = flag.Float64("defaultspeed", 0, "speed in km/h assumed for edges without a speed limit (0 keeps the built-in default)")
	useRateLimit = flag.Bool("ratelimit", false, "throttle concurrent requests")
	cpuprofile   = flag.String("cpuprofile", "", "write cpu profile to file")
	memprofile   = flag.String("memprofile", "", "write memory profile to this file")
)

func main() {
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.StartCPUProfile(f)
		defer pprof.StopCPUProfile()
	}

	ctx := context.Background()

	parser := osmparser.NewOsmParser()
	graphData, err := parser.Parse(ctx, *mapFile)
	if err != nil {
		log.Fatal(err)
	}

	var graphOpts []roadgraph.Option
	if *defaultSpeed > 0 {
		graphOpts = append(graphOpts, roadgraph.WithDefaultSpeed(*defaultSpeed))
	}

	graph, err := roadgraph.NewRoadGraph(graphData, graphOpts...)
	if err != nil {
		log.Fatal(err)
	}

	recordMemProfile(memprofile, "load_road_graph")

	badgerOpts := badger.DefaultOptions(*kvDir)
	if *kvInMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	}
	db, err := badger.Open(badgerOpts)
	if err != nil {
		log.Fatal(err)
	}

	kvDB := kv.NewKVDB(db)
	defer kvDB.Close()

	if err := kvDB.BuildH3IndexedEdges(ctx, snappingEdges(graph)); err != nil {
		log.Fatal(err)
	}

	reg := prometheus.NewRegistry()
	m := rest.NewMetrics(reg)

	r := chi.NewRouter()

	r.Use(middleware.Logger)

	r.Use(rest.PromeHttpMiddleware(m))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	if *useRateLimit {
		r.Use(middleware.Throttle(100))
		r.Use(middleware.Timeout(30 * time.Second))
	}

	r.Mount("/debug", middleware.Profiler())

	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	navigatorSvc := service.NewNavigationService(graph, kvDB)
	recordMemProfile(memprofile, "service_init")

	rest.NavigationRouter(r, navigatorSvc)

	fmt.Printf("\nroad network ready: %d nodes, %d edges", graph.NumNodes(), graph.NumEdges())
	fmt.Printf("\nserver started at %s\n", *listenAddr)

	log.Fatal(http.ListenAndServe(*listenAddr, r))
}

// snappingEdges flattens the graph's arcs into the compact records the h3
// snapping index stores. The representative point of every arc is its
// geometric midpoint.
func snappingEdges(graph *roadgraph.RoadGraph) []kv.KVEdge {
	edges := make([]kv.KVEdge, 0, graph.NumEdges())
	for edgeID := 0; edgeID < graph.NumEdges(); edgeID++ {
		arc := graph.OutEdge(int32(edgeID))

		from := graph.NodeCoordinate(arc.From)
		to := graph.NodeCoordinate(arc.To)
		center := datastructure.NewCoordinate(
			(from.Lat+to.Lat)/2,
			(from.Lon+to.Lon)/2,
		)
		if len(arc.PointsInBetween) > 0 {
			center = arc.PointsInBetween[len(arc.PointsInBetween)/2]
		}

		edges = append(edges, kv.KVEdge{
			EdgeID:     arc.EdgeID,
			FromNodeID: arc.From,
			ToNodeID:   arc.To,
			CenterLoc:  [2]float64{center.Lat, center.Lon},
		})
	}
	return edges
}

func recordMemProfile(memprofile *string, name string) {
	if *memprofile != "" {
		*memprofile = strings.Replace(*memprofile, ".mprof", fmt.Sprintf("%s.mprof", name), -1)
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal(err)
		}
		pprof.WriteHeapProfile(f)
		f.Close()
	}
}
