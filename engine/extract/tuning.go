package extract

// Calibrated geometry thresholds, in SVG user units. These values were tuned
// against production diagram sets; when a new diagram style misbehaves, tune
// here rather than in the extractors.
const (
	// axisTolerance is the coordinate delta under which a segment counts
	// as horizontal or vertical.
	axisTolerance = 5

	// segmentWindow is how close a splice must sit to a segment's axis to
	// count as lying on that segment.
	segmentWindow = 10

	// bandHeight groups wire specs into horizontal bands: specs are
	// bucketed by Y in bandHeight steps and connection points within
	// bandHeight of a band spec belong to the band.
	bandHeight = 10

	// clusterMaxSpread is the band Y spread beyond which points are split
	// into sub-clusters; clusterJoinGap keeps a point with a cluster when
	// it sits within that gap of the cluster's current range.
	clusterMaxSpread = 15
	clusterJoinGap   = 3

	// duplicateXWindow collapses band points sharing an X position.
	duplicateXWindow = 0.5

	// specNearWindow lets a pair with no spec strictly between its
	// endpoints survive if a band spec sits this close to the left end.
	specNearWindow = 50

	// sameWireTolerance is the maximum difference between two endpoints'
	// Y distances to the attributed spec; beyond it they are on separate
	// wires that happen to share the band.
	sameWireTolerance = 5

	// maxUnbackedGap is the widest horizontal endpoint gap accepted
	// without a spec between the endpoints.
	maxUnbackedGap = 220

	// maxConnectorSpan is the widest owning-connector separation for a
	// pin-to-pin pair with no spec bridging the connectors.
	maxConnectorSpan = 100

	// boundaryLabelWindow is the Y window in which a foreign connector
	// label between two endpoints marks a module boundary.
	boundaryLabelWindow = 15

	// groundWindow is the X reach from a ground arrow to its label and
	// candidate pins; groundLabelYWindow and groundPinYWindow are the Y
	// reaches for labels and pins, and groundColumnWindow restricts
	// candidates to the arrow's own column.
	groundWindow       = 210
	groundLabelYWindow = 20
	groundPinYWindow   = 10
	groundColumnWindow = 10

	// labelPlausibleDist is the maximum connector-label-to-ground-label
	// distance when several connectors compete for one ground point.
	labelPlausibleDist = 150

	// Wire spec attribution: a spec must sit within specAboveReach units
	// above its wire; vertical distance is weighted by specYWeight and the
	// combined distance must stay under specMaxDist.
	specAboveReach = 50
	specYWeight    = 2.0
	specMaxDist    = 150

	// rectSpecYWindow and rectSpecXSlack bound the spec search around a
	// rectangular run's longest horizontal segment.
	rectSpecYWindow = 15
	rectSpecXSlack  = 50

	// spliceDistanceFloor is the minimum separation at which the routing
	// extractors join two splices directly. Shorter splice-to-splice pairs
	// are usually a polyline crossing an unrelated splice; the color-flow
	// resolver handles them with stronger evidence. The color-flow
	// resolver additionally demands a dominant vertical run of at least
	// longRoutingMinDrop.
	spliceDistanceFloor = 400
	longRoutingMinDrop  = 200

	// boundsPadding pads the component bounding box used to reject
	// external perimeter routing.
	boundsPadding = 20

	// endpointRadius is the search radius when resolving a polyline or
	// path endpoint; spliceSnapRadius is the tight radius for intermediate
	// vertices, and cornerRadius for rectangle corners.
	endpointRadius   = 100
	spliceSnapRadius = 20
	cornerRadius     = 15

	// pathSegmentWindow is the perpendicular reach from a routing path
	// segment to tokens on it; segmentSlack extends the segment's span at
	// both ends.
	pathSegmentWindow = 15
	segmentSlack      = 5
)
