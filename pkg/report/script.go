package report

// ScriptFile is the name of the page script written next to style.css.
const ScriptFile = "tree.js"

// treeScript drives the package tree in the browser. It works on the markup
// htmlview produces: rows are li.node elements carrying data-id, data-text,
// data-width and data-coverage, toggles are marked data-event="node-toggle"
// and links data-event="link-activate". Search follows tree.Search: a query
// with a dot matches ids, anything else the display text, and matches are
// folded into earlier results below them or sharing their id prefix.
const treeScript = `(function () {
  "use strict";

  var ARROW_OPEN = "▾", ARROW_CLOSED = "▸";
  var TOGGLE = "node-toggle", LINK = "link-activate";

  function idOf(li) { return li.getAttribute("data-id"); }

  function parentPrefix(id) {
    var i = id.lastIndexOf(".");
    return i < 0 ? "" : id.slice(0, i);
  }

  function parentRow(li) {
    var ul = li.parentElement;
    return ul && ul.classList.contains("children") ? ul.parentElement : null;
  }

  function childList(li) {
    for (var c = li.firstElementChild; c; c = c.nextElementSibling) {
      if (c.classList.contains("children")) return c;
    }
    return null;
  }

  function rowOf(el) {
    return el && el.closest ? el.closest("li.node") : null;
  }

  function PackageTree(root, input) {
    this.root = root;
    this.scroll = root.querySelector(".tree-scroll");
    this.list = root.querySelector(".tree-root");
    this.extent = root.querySelector(".tree-extent");
    this.strip = root.querySelector(".badge-strip");
    this.noResults = root.querySelector(".no-results");
    this.cell = parseInt(root.getAttribute("data-cell"), 10) || 14;
    this.current = root.getAttribute("data-current") || "";
    this.rows = Array.prototype.slice.call(this.list.querySelectorAll("li.node"));
    this.byId = {};
    for (var i = 0; i < this.rows.length; i++) {
      this.byId[idOf(this.rows[i])] = this.rows[i];
    }
    this.selected = null;
    this.hovered = null;
    this.bind(input);
    this.refresh();
  }

  PackageTree.prototype.isOpen = function (li) {
    return li.classList.contains("open");
  };

  PackageTree.prototype.setOpen = function (li, open) {
    var children = childList(li);
    if (!children || this.isOpen(li) === open) return false;
    li.classList.toggle("open", open);
    li.classList.toggle("closed", !open);
    children.classList.toggle("hidden", !open);
    var arrow = li.querySelector(".arrow");
    if (arrow) arrow.textContent = open ? ARROW_OPEN : ARROW_CLOSED;
    return true;
  };

  PackageTree.prototype.toggle = function (li) {
    this.setOpen(li, !this.isOpen(li));
    this.refresh();
  };

  PackageTree.prototype.openAncestors = function (li, includeSelf) {
    if (!li) return;
    if (includeSelf) this.setOpen(li, true);
    for (var p = parentRow(li); p; p = parentRow(p)) this.setOpen(p, true);
  };

  // visible lists rows in document order (pre-order) that are shown: not
  // hidden by search and under open, shown parents only.
  PackageTree.prototype.visible = function () {
    if (this.list.classList.contains("hidden")) return [];
    var shown = {}, out = [];
    for (var i = 0; i < this.rows.length; i++) {
      var li = this.rows[i];
      if (li.classList.contains("search-hidden")) continue;
      var p = parentRow(li);
      if (p && !(shown[idOf(p)] && this.isOpen(p))) continue;
      shown[idOf(li)] = true;
      out.push(li);
    }
    return out;
  };

  // refresh rebuilds the badge strip, one slot per visible row, and sizes
  // the extent placeholder to the widest visible row.
  PackageTree.prototype.refresh = function () {
    var visible = this.visible(), widest = 0;
    while (this.strip.firstChild) this.strip.removeChild(this.strip.firstChild);
    for (var i = 0; i < visible.length; i++) {
      var slot = document.createElement("div");
      slot.className = "badge-slot";
      slot.setAttribute("data-id", idOf(visible[i]));
      slot.innerHTML = visible[i].getAttribute("data-coverage") || "";
      this.strip.appendChild(slot);
      widest = Math.max(widest, parseInt(visible[i].getAttribute("data-width"), 10) || 0);
    }
    this.extent.style.width = widest * this.cell + "px";
    if (this.selected && visible.indexOf(this.selected) < 0) this.select(null);
  };

  PackageTree.prototype.showResults = function (found) {
    this.list.classList.toggle("hidden", !found);
    this.noResults.classList.toggle("hidden", found);
  };

  PackageTree.prototype.clearHidden = function () {
    for (var i = 0; i < this.rows.length; i++) this.rows[i].classList.remove("search-hidden");
  };

  PackageTree.prototype.foldsInto = function (li, results) {
    for (var i = 0; i < results.length; i++) {
      var r = results[i];
      if ((r !== li && r.contains(li)) || parentPrefix(idOf(li)) === parentPrefix(idOf(r))) return true;
    }
    return false;
  };

  PackageTree.prototype.search = function (query) {
    var i, li;
    if (query === "") {
      for (i = 0; i < this.rows.length; i++) {
        this.setOpen(this.rows[i], false);
        this.rows[i].classList.remove("match");
      }
      this.clearHidden();
      this.openAncestors(this.byId[this.current], true);
      this.showResults(true);
      this.refresh();
      return;
    }

    var byId = query.indexOf(".") >= 0;
    var results = [], keep = {}, total = 0;
    for (i = 0; i < this.rows.length; i++) {
      li = this.rows[i];
      var field = byId ? idOf(li) : li.getAttribute("data-text") || "";
      var matched = field.indexOf(query) >= 0;
      li.classList.toggle("match", matched);
      if (!matched) continue;
      total++;
      for (var p = li; p && !keep[idOf(p)]; p = parentRow(p)) keep[idOf(p)] = true;
      if (!this.foldsInto(li, results)) results.push(li);
    }

    this.clearHidden();
    if (total === 0) {
      this.showResults(false);
      this.refresh();
      return;
    }
    this.showResults(true);
    for (i = 0; i < results.length; i++) this.openAncestors(results[i], false);
    var visible = this.visible();
    for (i = 0; i < visible.length; i++) {
      if (!keep[idOf(visible[i])]) visible[i].classList.add("search-hidden");
    }
    this.refresh();
  };

  PackageTree.prototype.select = function (li) {
    if (this.selected) this.selected.classList.remove("selected");
    this.selected = li;
    if (li) {
      li.classList.add("selected");
      if (li.scrollIntoView) li.scrollIntoView({ block: "nearest" });
    }
  };

  PackageTree.prototype.hover = function (li) {
    if (this.hovered === li) return;
    if (this.hovered) this.hovered.classList.remove("hover");
    this.hovered = li;
    if (li) li.classList.add("hover");
  };

  PackageTree.prototype.activate = function (li) {
    var link = li && li.querySelector("[data-event='" + LINK + "']");
    if (link && rowOf(link) === li) window.location.href = link.href;
  };

  PackageTree.prototype.handleKey = function (key) {
    var visible = this.visible();
    var idx = this.selected ? visible.indexOf(this.selected) : -1;
    if (idx < 0 && this.selected) this.select(null);
    switch (key) {
      case "ArrowUp":
        if (visible.length) this.select(visible[idx < 0 ? visible.length - 1 : (idx - 1 + visible.length) % visible.length]);
        return true;
      case "ArrowDown":
        if (visible.length) this.select(visible[idx < 0 ? 0 : (idx + 1) % visible.length]);
        return true;
      case "ArrowRight":
      case "ArrowLeft":
        if (this.selected) {
          this.setOpen(this.selected, key === "ArrowRight");
          this.refresh();
        }
        return true;
      case "Enter":
        this.activate(this.selected);
        return true;
    }
    return false;
  };

  PackageTree.prototype.bind = function (input) {
    var self = this;
    this.root.addEventListener("click", function (e) {
      var toggle = e.target.closest && e.target.closest("[data-event='" + TOGGLE + "']");
      if (!toggle) return;
      e.preventDefault();
      self.toggle(rowOf(toggle));
    });
    this.root.addEventListener("mouseover", function (e) {
      if (e.target.closest && e.target.closest(".row")) self.hover(rowOf(e.target));
    });
    this.root.addEventListener("mouseleave", function () { self.hover(null); });
    this.root.addEventListener("keydown", function (e) {
      if (self.handleKey(e.key)) e.preventDefault();
    });
    // The strip sits outside the scroller; follow its vertical offset.
    this.scroll.addEventListener("scroll", function () {
      self.strip.style.transform = "translateY(" + -self.scroll.scrollTop + "px)";
    });
    if (input) {
      input.addEventListener("input", function () { self.search(input.value); });
    }
  };

  function init() {
    var root = document.querySelector(".package-tree");
    if (!root) return;
    window.packageTree = new PackageTree(root, document.querySelector(".tree-search"));
    var current = root.querySelector("li.current");
    if (current && current.scrollIntoView) current.scrollIntoView({ block: "center" });
  }

  if (document.readyState === "loading") {
    document.addEventListener("DOMContentLoaded", init);
  } else {
    init();
  }
})();
`
