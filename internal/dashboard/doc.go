// Package dashboard assembles the sales performance page.
//
// Builder aggregates the sales, segmentation and clustering datasets and
// lays out six elements in a fixed order:
//
//	category-sales         bar     sales value and quantity per category
//	top-products           bar     best-selling products
//	top-businesses         bar     businesses with the highest sales
//	sales-trends           line    monthly sales value and quantity
//	customer-segmentation  table   totals per customer segment
//	segmentation-plot      scatter businesses by value and quantity
//
// Compose enforces that order. HTMLRenderer turns the page into one HTML
// document with the charts embedded as SVG.
package dashboard
